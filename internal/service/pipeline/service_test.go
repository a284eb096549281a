package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"reelforge/internal/config"
	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/shotstack"
)

type testEnv struct {
	projects   *fakeProjectRepo
	scenes     *fakeSceneRepo
	audio      *fakeAudioAssetRepo
	jobs       *fakeRenderJobRepo
	locations  *fakeLocationRepo
	characters *fakeCharacterRepo
	topics     *fakeTopicRepo
	writer     *fakeWriter
	speech     *fakeSpeech
	visual     *fakeVisual
	renderer   *fakeRenderer
	pricer     *fakePricer
	store      *fakeStorage
	svc        *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		projects: newFakeProjectRepo(),
		scenes:   newFakeSceneRepo(),
		audio:    newFakeAudioAssetRepo(),
		jobs:     newFakeRenderJobRepo(),
		locations: newFakeLocationRepo([]*library.Location{
			{ID: "loc-a", Name: "Loc A", Type: "indoor", Description: "a cozy room"},
			{ID: "loc-b", Name: "Loc B", Type: "outdoor", Description: "a windy cliff"},
			{ID: "loc-c", Name: "Loc C", Type: "urban", Description: "a neon street"},
		}),
		characters: &fakeCharacterRepo{items: map[string]*library.Character{
			"nar": {ID: "nar", Name: "Narrator", Gender: "female", Age: 30, VoiceID: "voice-1"},
		}},
		topics: &fakeTopicRepo{},
		writer: &fakeWriter{},
		speech: &fakeSpeech{},
		visual: &fakeVisual{},
		renderer: &fakeRenderer{statuses: []*shotstack.RenderStatus{
			{State: shotstack.StateDone, URL: "https://renders.test/final.mp4"},
		}},
		pricer: &fakePricer{prices: map[string]float64{
			pricing.ItemClaudeInputPerMillion:  10,
			pricing.ItemClaudeOutputPerMillion: 20,
			pricing.ItemElevenLabsPlanMonthly:  22,
			pricing.ItemElevenLabsPlanChars:    100000,
			pricing.ItemShotstackPerMinute:     0.3,
			pricing.ItemFalImage:               0.02,
			pricing.ItemFalVideoPerSecond:      0.05,
			pricing.ItemMusicPerTrack:          0.1,
		}},
		store: newFakeStorage(),
	}

	cfg := &config.PipelineConfig{
		PollInterval:     time.Millisecond,
		PollMaxAttempts:  60,
		SceneConcurrency: 4,
	}
	env.svc = NewService(Deps{
		Projects:    env.projects,
		Scenes:      env.scenes,
		AudioAssets: env.audio,
		RenderJobs:  env.jobs,
		Locations:   env.locations,
		Characters:  env.characters,
		Topics:      env.topics,
		Writer:      env.writer,
		Speech:      env.speech,
		Visual:      env.visual,
		Renderer:    env.renderer,
		Pricer:      env.pricer,
		Store:       env.store,
	}, cfg, "1080")
	return env
}

// scriptResponse 构造带 markdown 围栏的 LLM 响应
func scriptResponse(voiceovers ...string) string {
	scenes := make([]generatedScene, 0, len(voiceovers))
	for _, v := range voiceovers {
		scenes = append(scenes, generatedScene{
			Voiceover:    v,
			ImagePrompt:  "a scene",
			MotionPrompt: "slow push in",
		})
	}
	data, _ := json.Marshal(scenes)
	return "Here is the script:\n```json\n" + string(data) + "\n```"
}

func (env *testEnv) createProject(t *testing.T, sceneCount int) *model.Project {
	t.Helper()
	p, err := env.svc.CreateProject(context.Background(), CreateProjectInput{
		Topic:       "ocean mysteries",
		SceneCount:  sceneCount,
		CharacterID: "nar",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (env *testEnv) waitForTerminal(t *testing.T, projectID string) *model.Project {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p, err := env.projects.FindByID(context.Background(), projectID)
		if err != nil {
			t.Fatalf("find project: %v", err)
		}
		if p.Status.IsTerminal() {
			return p
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("project %s never reached terminal status", projectID)
	return nil
}

func TestGenerateScript(t *testing.T) {
	ctx := context.Background()

	Convey("GenerateScript 脚本长度门禁", t, func() {
		Convey("脚本过短时阶段失败且不落库", func() {
			env := newTestEnv()
			p := env.createProject(t, 4)

			// 4 场景下限 326 字符，四段共 200 字符远低于门槛
			env.writer.response = scriptResponse(
				strings.Repeat("字", 50), strings.Repeat("字", 50),
				strings.Repeat("字", 50), strings.Repeat("字", 50),
			)

			_, err := env.svc.GenerateScript(ctx, p.ID)
			So(apperr.IsPrecondition(err), ShouldBeTrue)

			got, _ := env.projects.FindByID(ctx, p.ID)
			So(got.Status, ShouldEqual, model.StatusDraft)
			So(got.Script, ShouldBeEmpty)
		})

		Convey("脚本达标时落库场景并推进状态", func() {
			env := newTestEnv()
			p := env.createProject(t, 4)

			env.writer.response = scriptResponse(
				strings.Repeat("字", 90), strings.Repeat("字", 90),
				strings.Repeat("字", 90), strings.Repeat("字", 90),
			)

			got, err := env.svc.GenerateScript(ctx, p.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusScriptGenerated)
			So(got.CurrentStep, ShouldEqual, model.StepVoiceover)
			So(got.Script, ShouldNotBeEmpty)

			scenes, _ := env.scenes.FindByProject(ctx, p.ID)
			So(len(scenes), ShouldEqual, 4)
			for i, sc := range scenes {
				So(sc.ID, ShouldEqual, i+1)
				So(sc.Duration, ShouldBeBetweenOrEqual, 1, 15)
				So(sc.LocationID, ShouldNotBeEmpty)
				So(sc.Approved, ShouldBeFalse)
			}

			// LLM 成本：1000 输入 token、2000 输出 token
			So(got.Costs.Claude, ShouldAlmostEqual, 0.05, 1e-9)
			So(got.Costs.Step1.Total, ShouldAlmostEqual, 0.05, 1e-9)
			So(got.Costs.Total, ShouldAlmostEqual, 0.05, 1e-9)
		})
	})
}

func TestGenerateVoiceover(t *testing.T) {
	ctx := context.Background()

	Convey("GenerateVoiceover 停顿标记翻译与资产落库", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 2)
		env.writer.response = scriptResponse(
			"Hello [pause:2s] world "+strings.Repeat("字", 80),
			strings.Repeat("字", 90),
		)
		_, err := env.svc.GenerateScript(ctx, p.ID)
		So(err, ShouldBeNil)

		got, err := env.svc.GenerateVoiceover(ctx, p.ID)
		So(err, ShouldBeNil)

		Convey("合成文本中的 2 秒停顿恰好出现一次", func() {
			So(strings.Count(env.speech.lastText, `<break time="2s" />`), ShouldEqual, 1)
			So(strings.Contains(env.speech.lastText, "[pause"), ShouldBeFalse)
		})

		Convey("状态推进且配音资产独立落库", func() {
			So(got.Status, ShouldEqual, model.StatusVoiceoverGenerated)
			So(got.CurrentStep, ShouldEqual, model.StepImages)
			So(got.VoiceoverURL, ShouldNotBeEmpty)

			assets, _ := env.audio.FindByProject(ctx, p.ID, model.AudioKindVoiceover)
			So(len(assets), ShouldEqual, 1)
			So(assets[0].ID, ShouldEqual, got.VoiceoverID)
		})

		Convey("voice_id 以角色库为准", func() {
			env.characters.items["nar"].VoiceID = ""
			_, err := env.svc.GenerateVoiceover(ctx, p.ID)
			So(apperr.IsPrecondition(err), ShouldBeTrue)
		})
	})
}

func TestSceneApprovalGate(t *testing.T) {
	ctx := context.Background()

	Convey("阶段四审批门禁", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 3)
		env.scenes.ReplaceAll(ctx, p.ID, []*model.Scene{
			{ID: 1, Duration: 5, ImageURL: "https://cdn.test/i1.png", Approved: true},
			{ID: 2, Duration: 5, ImageURL: "https://cdn.test/i2.png", Approved: false},
			{ID: 3, Duration: 5, ImageURL: "https://cdn.test/i3.png", Approved: true},
		})

		Convey("任一场景未通过则整体拒绝", func() {
			_, err := env.svc.GenerateSceneVideos(ctx, p.ID)
			So(apperr.IsPrecondition(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "2")
		})

		Convey("全部通过后并发生成并写回 video_url", func() {
			env.scenes.SetApproved(ctx, p.ID, 2, true)

			results, err := env.svc.GenerateSceneVideos(ctx, p.ID)
			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 3)
			for _, r := range results {
				So(r.Error, ShouldBeEmpty)
				So(r.VideoURL, ShouldNotBeEmpty)
			}

			scenes, _ := env.scenes.FindByProject(ctx, p.ID)
			for _, sc := range scenes {
				So(sc.VideoURL, ShouldNotBeEmpty)
			}

			// 15 秒视频 × 0.05/秒
			got, _ := env.projects.FindByID(ctx, p.ID)
			So(got.Costs.FalVideos, ShouldAlmostEqual, 0.75, 1e-9)
			So(got.Costs.Step4.Total, ShouldAlmostEqual, 0.75, 1e-9)
		})
	})
}

func TestRegenerateImageResetsApproval(t *testing.T) {
	ctx := context.Background()

	Convey("重生成场景图片重置该场景审批标记", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 3)
		env.scenes.ReplaceAll(ctx, p.ID, []*model.Scene{
			{ID: 1, Duration: 5, Voiceover: "one", LocationID: "loc-a", ImageURL: "https://cdn.test/old1.png", Approved: true},
			{ID: 2, Duration: 5, Voiceover: "two", LocationID: "loc-a", ImageURL: "https://cdn.test/old2.png", Approved: true},
			{ID: 3, Duration: 5, Voiceover: "three", LocationID: "loc-b", Approved: true},
		})

		sc, err := env.svc.GenerateSceneImage(ctx, p.ID, 2)
		So(err, ShouldBeNil)
		So(sc.Approved, ShouldBeFalse)
		So(sc.ImageURL, ShouldNotBeEmpty)
		So(sc.ImageURL, ShouldNotEqual, "https://cdn.test/old2.png")

		// 旧图片的存储对象被清理
		So(env.store.deleted, ShouldContain, "old2.png")

		// 新图登记为地点样例，旧图不再出现
		So(env.locations.samples["loc-a"], ShouldContain, sc.ImageURL)
		So(env.locations.samples["loc-a"], ShouldNotContain, "https://cdn.test/old2.png")

		// 兄弟场景不受影响
		s1, _ := env.scenes.FindOne(ctx, p.ID, 1)
		s3, _ := env.scenes.FindOne(ctx, p.ID, 3)
		So(s1.Approved, ShouldBeTrue)
		So(s3.Approved, ShouldBeTrue)
	})
}

func TestPollerTerminalTransitions(t *testing.T) {
	ctx := context.Background()

	Convey("渲染轮询的终态转移", t, func() {
		Convey("processing, processing, done 恰好一次终态写入", func() {
			env := newTestEnv()
			p := env.createProject(t, 2)
			env.renderer.statuses = []*shotstack.RenderStatus{
				{State: shotstack.StateProcessing},
				{State: shotstack.StateProcessing},
				{State: shotstack.StateDone, URL: "https://renders.test/x.mp4"},
			}

			job := &model.RenderJob{ID: "job-1", ProjectID: p.ID, RenderID: "r-1", Status: model.RenderJobPending}
			env.jobs.Create(ctx, job)
			env.svc.Poller().Run(ctx, job)

			got, _ := env.projects.FindByID(ctx, p.ID)
			So(got.Status, ShouldEqual, model.StatusCompleted)
			So(got.FinalVideoURL, ShouldEqual, "https://renders.test/x.mp4")
			So(env.projects.terminalWrites, ShouldEqual, 1)
			So(env.renderer.polls, ShouldEqual, 3)

			j, _ := env.jobs.FindByID(ctx, "job-1")
			So(j.Status, ShouldEqual, model.RenderJobDone)
		})

		Convey("60 次 processing 后按超时失败且不再轮询", func() {
			env := newTestEnv()
			p := env.createProject(t, 2)
			env.renderer.statuses = []*shotstack.RenderStatus{
				{State: shotstack.StateProcessing},
			}

			job := &model.RenderJob{ID: "job-2", ProjectID: p.ID, RenderID: "r-2", Status: model.RenderJobPending}
			env.jobs.Create(ctx, job)
			env.svc.Poller().Run(ctx, job)

			got, _ := env.projects.FindByID(ctx, p.ID)
			So(got.Status, ShouldEqual, model.StatusFailed)
			So(got.Error, ShouldContainSubstring, "timeout")
			So(env.renderer.polls, ShouldEqual, 60)

			j, _ := env.jobs.FindByID(ctx, "job-2")
			So(j.Status, ShouldEqual, model.RenderJobFailed)
		})

		Convey("渲染上报失败时项目置为 failed", func() {
			env := newTestEnv()
			p := env.createProject(t, 2)
			env.renderer.statuses = []*shotstack.RenderStatus{
				{State: shotstack.StateFailed, Error: "asset fetch error"},
			}

			job := &model.RenderJob{ID: "job-3", ProjectID: p.ID, RenderID: "r-3", Status: model.RenderJobPending}
			env.jobs.Create(ctx, job)
			env.svc.Poller().Run(ctx, job)

			got, _ := env.projects.FindByID(ctx, p.ID)
			So(got.Status, ShouldEqual, model.StatusFailed)
			So(got.Error, ShouldContainSubstring, "asset fetch error")
		})
	})
}

func TestAssembleGuards(t *testing.T) {
	ctx := context.Background()

	Convey("合成阶段前置条件", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 2)

		Convey("没有配音时拒绝", func() {
			_, err := env.svc.AssembleVideo(ctx, p.ID)
			So(apperr.IsPrecondition(err), ShouldBeTrue)
		})

		Convey("存在未审批场景时拒绝，即使视频齐备", func() {
			env.projects.UpdateFields(ctx, p.ID, map[string]any{"voiceover_url": "https://cdn.test/v.mp3"})
			// 重生成图片会重置审批，旧视频仍在但必须重新过审
			env.scenes.ReplaceAll(ctx, p.ID, []*model.Scene{
				{ID: 1, Duration: 5, VideoURL: "https://cdn.test/v1.mp4", Approved: true},
				{ID: 2, Duration: 5, VideoURL: "https://cdn.test/v2.mp4", Approved: false},
			})

			_, err := env.svc.AssembleVideo(ctx, p.ID)
			So(apperr.IsPrecondition(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "not all scenes approved")
		})

		Convey("已有进行中的渲染任务时拒绝", func() {
			env.projects.UpdateFields(ctx, p.ID, map[string]any{"voiceover_url": "https://cdn.test/v.mp3"})
			env.scenes.ReplaceAll(ctx, p.ID, []*model.Scene{
				{ID: 1, Duration: 5, VideoURL: "https://cdn.test/v1.mp4", Approved: true},
			})
			env.jobs.Create(ctx, &model.RenderJob{ID: "active", ProjectID: p.ID, RenderID: "r-0", Status: model.RenderJobPending})

			_, err := env.svc.AssembleVideo(ctx, p.ID)
			So(err, ShouldEqual, apperr.ErrRenderAlreadyInProgress)
		})
	})
}

func TestConcurrentCostAccrual(t *testing.T) {
	ctx := context.Background()

	Convey("并发记账逐笔累加，不互相覆盖", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 2)

		// 阶段三按场景并发调用，记账必须经得起并发
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				env.svc.addCost(ctx, p.ID, costs.ProviderFalImages, costs.StageImages, 0.01)
			}()
		}
		wg.Wait()

		got, _ := env.projects.FindByID(ctx, p.ID)
		So(got.Costs.FalImages, ShouldAlmostEqual, 0.20, 1e-9)
		So(got.Costs.Step3.FalImages, ShouldAlmostEqual, 0.20, 1e-9)
		So(got.Costs.Step3.Total, ShouldAlmostEqual, 0.20, 1e-9)
		So(got.Costs.Total, ShouldAlmostEqual, 0.20, 1e-9)
	})
}

func TestEndToEndPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("两场景端到端流水线", t, func() {
		env := newTestEnv()
		p := env.createProject(t, 2)

		// 阶段一：脚本（2 场景下限 163 字符）
		env.writer.response = scriptResponse(
			strings.Repeat("字", 90), strings.Repeat("字", 90),
		)
		_, err := env.svc.GenerateScript(ctx, p.ID)
		So(err, ShouldBeNil)

		// 阶段二：配音
		_, err = env.svc.GenerateVoiceover(ctx, p.ID)
		So(err, ShouldBeNil)

		// 阶段三：逐场景生成图片并审批
		for sceneID := 1; sceneID <= 2; sceneID++ {
			_, err = env.svc.GenerateSceneImage(ctx, p.ID, sceneID)
			So(err, ShouldBeNil)
			_, err = env.svc.ApproveScene(ctx, p.ID, sceneID, true)
			So(err, ShouldBeNil)
		}

		// 阶段四：场景视频
		results, err := env.svc.GenerateSceneVideos(ctx, p.ID)
		So(err, ShouldBeNil)
		for _, r := range results {
			So(r.Error, ShouldBeEmpty)
		}

		// 背景音乐
		_, err = env.svc.GenerateMusic(ctx, p.ID, MusicInput{Prompt: "calm ambient piano"})
		So(err, ShouldBeNil)

		// 阶段五：合成并等待轮询完成
		env.renderer.statuses = []*shotstack.RenderStatus{
			{State: shotstack.StateProcessing},
			{State: shotstack.StateDone, URL: "https://renders.test/final.mp4"},
		}
		submitted, err := env.svc.AssembleVideo(ctx, p.ID)
		So(err, ShouldBeNil)
		So(submitted.Status, ShouldEqual, model.StatusRendering)
		So(submitted.RenderID, ShouldNotBeEmpty)

		final := env.waitForTerminal(t, p.ID)
		So(final.Status, ShouldEqual, model.StatusCompleted)
		So(final.FinalVideoURL, ShouldEqual, "https://renders.test/final.mp4")

		// 账本不变量：总额等于各供应商之和，也等于各阶段小计之和
		c := final.Costs
		providerSum := c.Claude + c.ElevenLabs + c.Shotstack + c.FalImages + c.FalVideos
		stageSum := c.Step1.Total + c.Step2.Total + c.Step3.Total + c.Step4.Total + c.Step5.Total
		So(c.Total, ShouldAlmostEqual, providerSum, 1e-9)
		So(c.Total, ShouldAlmostEqual, stageSum, 1e-9)
		So(c.Claude, ShouldBeGreaterThan, 0)
		So(c.ElevenLabs, ShouldBeGreaterThan, 0)
		So(c.FalImages, ShouldBeGreaterThan, 0)
		So(c.FalVideos, ShouldBeGreaterThan, 0)
		So(c.Shotstack, ShouldBeGreaterThan, 0)
	})
}
