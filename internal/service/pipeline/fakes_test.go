package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"reelforge/internal/ai"
	"reelforge/internal/model/library"
	model "reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/costs"
	"reelforge/internal/pkg/elevenlabs"
	"reelforge/internal/pkg/scripttools"
	"reelforge/internal/pkg/shotstack"
	"reelforge/internal/pkg/storage"
)

// ---- 仓库内存实现 ----

type fakeProjectRepo struct {
	mu    sync.Mutex
	items map[string]*model.Project
	// 终态写入次数（status 被写为 completed/failed 的次数）
	terminalWrites int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{items: map[string]*model.Project{}}
}

func (r *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.items[p.ID] = p
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperr.NewNotFound("project", id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) List(_ context.Context, status string, page, pageSize int64) ([]*model.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Project
	for _, p := range r.items {
		if status == "" || string(p.Status) == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) UpdateFields(_ context.Context, id string, fields bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return apperr.NewNotFound("project", id)
	}
	for k, v := range fields {
		switch k {
		case "topic":
			p.Topic = v.(string)
		case "categories":
			p.Categories = v.([]string)
		case "script":
			p.Script = v.(string)
		case "status":
			st := v.(model.ProjectStatus)
			if st.IsTerminal() {
				r.terminalWrites++
			}
			p.Status = st
		case "current_step":
			p.CurrentStep = v.(int)
		case "error":
			p.Error = v.(string)
		case "voiceover_id":
			p.VoiceoverID = v.(string)
		case "voiceover_url":
			p.VoiceoverURL = v.(string)
		case "background_music_id":
			p.BackgroundMusicID = v.(string)
		case "background_music_url":
			p.BackgroundMusicURL = v.(string)
		case "background_music_prompt":
			p.BackgroundMusicPrompt = v.(string)
		case "render_id":
			p.RenderID = v.(string)
		case "final_video_url":
			p.FinalVideoURL = v.(string)
		}
	}
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProjectRepo) SetStatus(ctx context.Context, id string, status model.ProjectStatus, step int) error {
	return r.UpdateFields(ctx, id, bson.M{"status": status, "current_step": step})
}

// AccrueCost 在锁内整笔合入，模拟 mongo $inc 的原子性
func (r *fakeProjectRepo) AccrueCost(_ context.Context, id string, deltas map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return apperr.NewNotFound("project", id)
	}
	for path, delta := range deltas {
		parts := strings.SplitN(path, ".", 2)
		if len(parts) == 2 && parts[1] != "total" {
			p.Costs = costs.Add(p.Costs, costs.Provider(parts[1]), costs.Stage(parts[0]), delta)
		}
	}
	p.Version++
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperr.NewNotFound("project", id)
	}
	delete(r.items, id)
	return nil
}

type fakeSceneRepo struct {
	mu     sync.Mutex
	scenes map[string][]*model.Scene
}

func newFakeSceneRepo() *fakeSceneRepo {
	return &fakeSceneRepo{scenes: map[string][]*model.Scene{}}
}

func (r *fakeSceneRepo) ReplaceAll(_ context.Context, projectID string, scenes []*model.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range scenes {
		s.ProjectID = projectID
		s.Duration = scripttools.ClampSceneDuration(s.Duration)
		s.CreatedAt = now
		s.UpdatedAt = now
	}
	r.scenes[projectID] = scenes
	return nil
}

func (r *fakeSceneRepo) FindByProject(_ context.Context, projectID string) ([]*model.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Scene, 0, len(r.scenes[projectID]))
	for _, s := range r.scenes[projectID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSceneRepo) FindOne(_ context.Context, projectID string, sceneID int) (*model.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.scenes[projectID] {
		if s.ID == sceneID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.NewNotFound("scene", fmt.Sprintf("%s/%d", projectID, sceneID))
}

func (r *fakeSceneRepo) UpdateFields(_ context.Context, projectID string, sceneID int, fields bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.scenes[projectID] {
		if s.ID != sceneID {
			continue
		}
		for k, v := range fields {
			switch k {
			case "duration":
				s.Duration = scripttools.ClampSceneDuration(v.(int))
			case "voiceover":
				s.Voiceover = v.(string)
			case "image_prompt":
				s.ImagePrompt = v.(string)
			case "motion_prompt":
				s.MotionPrompt = v.(string)
			case "location_id":
				s.LocationID = v.(string)
			case "image_url":
				s.ImageURL = v.(string)
			case "video_url":
				s.VideoURL = v.(string)
			case "approved":
				s.Approved = v.(bool)
			}
		}
		s.UpdatedAt = time.Now()
		return nil
	}
	return apperr.NewNotFound("scene", fmt.Sprintf("%s/%d", projectID, sceneID))
}

func (r *fakeSceneRepo) SetApproved(ctx context.Context, projectID string, sceneID int, approved bool) error {
	return r.UpdateFields(ctx, projectID, sceneID, bson.M{"approved": approved})
}

func (r *fakeSceneRepo) DeleteByProject(_ context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scenes, projectID)
	return nil
}

type fakeAudioAssetRepo struct {
	mu    sync.Mutex
	items map[string]*model.AudioAsset
}

func newFakeAudioAssetRepo() *fakeAudioAssetRepo {
	return &fakeAudioAssetRepo{items: map[string]*model.AudioAsset{}}
}

func (r *fakeAudioAssetRepo) Create(_ context.Context, a *model.AudioAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	r.items[a.ID] = a
	return nil
}

func (r *fakeAudioAssetRepo) FindByID(_ context.Context, id string) (*model.AudioAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, apperr.NewNotFound("audio_asset", id)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAudioAssetRepo) FindByProject(_ context.Context, projectID string, kind model.AudioAssetKind) ([]*model.AudioAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AudioAsset
	for _, a := range r.items {
		if a.ProjectID == projectID && (kind == "" || a.Kind == kind) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAudioAssetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperr.NewNotFound("audio_asset", id)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeAudioAssetRepo) DeleteByProject(_ context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.items {
		if a.ProjectID == projectID {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeRenderJobRepo struct {
	mu    sync.Mutex
	items map[string]*model.RenderJob
}

func newFakeRenderJobRepo() *fakeRenderJobRepo {
	return &fakeRenderJobRepo{items: map[string]*model.RenderJob{}}
}

func (r *fakeRenderJobRepo) Create(_ context.Context, j *model.RenderJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now
	r.items[j.ID] = j
	return nil
}

func (r *fakeRenderJobRepo) FindByID(_ context.Context, id string) (*model.RenderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.items[id]
	if !ok {
		return nil, apperr.NewNotFound("render_job", id)
	}
	cp := *j
	return &cp, nil
}

func (r *fakeRenderJobRepo) FindActiveByProject(_ context.Context, projectID string) (*model.RenderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.items {
		if j.ProjectID == projectID && j.Status == model.RenderJobPending {
			cp := *j
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRenderJobRepo) FindPending(_ context.Context) ([]*model.RenderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.RenderJob
	for _, j := range r.items {
		if j.Status == model.RenderJobPending {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRenderJobRepo) RecordAttempt(_ context.Context, id string, attempt int, lastStatus string, nextPollAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.items[id]; ok {
		j.Attempt = attempt
		j.LastStatus = lastStatus
		j.NextPollAt = nextPollAt
	}
	return nil
}

func (r *fakeRenderJobRepo) Finish(_ context.Context, id string, status model.RenderJobStatus, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.items[id]; ok {
		j.Status = status
		j.Error = errMsg
	}
	return nil
}

type fakeLocationRepo struct {
	catalog []*library.Location
	usage   map[string]int
	samples map[string][]string
}

func newFakeLocationRepo(catalog []*library.Location) *fakeLocationRepo {
	return &fakeLocationRepo{catalog: catalog, usage: map[string]int{}, samples: map[string][]string{}}
}

func (r *fakeLocationRepo) List(_ context.Context, locationType string) ([]*library.Location, error) {
	if locationType == "" {
		return r.catalog, nil
	}
	var out []*library.Location
	for _, l := range r.catalog {
		if l.Type == locationType {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) FindByID(_ context.Context, id string) (*library.Location, error) {
	for _, l := range r.catalog {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, apperr.NewNotFound("location", id)
}

func (r *fakeLocationRepo) FindByIDs(ctx context.Context, ids []string) ([]*library.Location, error) {
	var out []*library.Location
	for _, id := range ids {
		if l, err := r.FindByID(ctx, id); err == nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) IncrementUsage(_ context.Context, ids []string) error {
	for _, id := range ids {
		r.usage[id]++
	}
	return nil
}

func (r *fakeLocationRepo) AppendSampleImage(_ context.Context, id, url string) error {
	for _, existing := range r.samples[id] {
		if existing == url {
			return nil
		}
	}
	r.samples[id] = append(r.samples[id], url)
	return nil
}

func (r *fakeLocationRepo) RemoveSampleImage(_ context.Context, id, url string) error {
	kept := r.samples[id][:0]
	for _, existing := range r.samples[id] {
		if existing != url {
			kept = append(kept, existing)
		}
	}
	r.samples[id] = kept
	return nil
}

func (r *fakeLocationRepo) Upsert(_ context.Context, loc *library.Location) error {
	r.catalog = append(r.catalog, loc)
	return nil
}

type fakeCharacterRepo struct {
	items map[string]*library.Character
}

func (r *fakeCharacterRepo) List(_ context.Context) ([]*library.Character, error) {
	var out []*library.Character
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCharacterRepo) FindByID(_ context.Context, id string) (*library.Character, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, apperr.NewNotFound("character", id)
	}
	return c, nil
}

func (r *fakeCharacterRepo) IncrementUsage(_ context.Context, id string) error { return nil }

func (r *fakeCharacterRepo) Upsert(_ context.Context, c *library.Character) error {
	r.items[c.ID] = c
	return nil
}

type fakeTopicRepo struct {
	generated map[string]bool
}

func (r *fakeTopicRepo) List(_ context.Context, _ int64) ([]*library.Topic, error) { return nil, nil }

func (r *fakeTopicRepo) FindByID(_ context.Context, id string) (*library.Topic, error) {
	return nil, apperr.NewNotFound("topic", id)
}

func (r *fakeTopicRepo) MarkGenerated(_ context.Context, id string) error {
	if r.generated == nil {
		r.generated = map[string]bool{}
	}
	r.generated[id] = true
	return nil
}

func (r *fakeTopicRepo) Upsert(_ context.Context, _ *library.Topic) error { return nil }

// ---- 外部端口桩 ----

type fakeWriter struct {
	response string
	err      error
	prompts  []string
}

func (w *fakeWriter) Generate(_ context.Context, req *ai.GenerateRequest) (*ai.GenerateResponse, error) {
	w.prompts = append(w.prompts, req.UserPrompt)
	if w.err != nil {
		return nil, w.err
	}
	return &ai.GenerateResponse{Content: w.response, PromptTokens: 1000, OutputTokens: 2000}, nil
}

type fakeSpeech struct {
	lastText string
	err      error
}

func (s *fakeSpeech) Synthesize(_ context.Context, voiceID, text string) (*elevenlabs.SynthesizeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastText = text
	return &elevenlabs.SynthesizeResult{Audio: []byte("audio"), Characters: len([]rune(text))}, nil
}

func (s *fakeSpeech) ComposeMusic(_ context.Context, prompt string, lengthMs int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("music"), nil
}

type fakeVisual struct {
	mu       sync.Mutex
	imageErr error
	videoErr map[int]error // 场景图片地址中带场景号时按场景注入失败
	calls    int
}

func (v *fakeVisual) GenerateImage(_ context.Context, prompt string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.imageErr != nil {
		return "", v.imageErr
	}
	return fmt.Sprintf("https://fal.test/image_%d.png", v.calls), nil
}

func (v *fakeVisual) ImageToVideo(_ context.Context, imageURL, motionPrompt string, durationSec int) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return fmt.Sprintf("https://fal.test/video_%d.mp4", v.calls), nil
}

func (v *fakeVisual) Download(_ context.Context, url string) ([]byte, error) {
	return []byte("bytes:" + url), nil
}

type fakeRenderer struct {
	mu       sync.Mutex
	renderID string
	// 依次返回的状态序列，耗尽后重复最后一个
	statuses  []*shotstack.RenderStatus
	submitErr error
	statusErr error
	polls     int
}

func (r *fakeRenderer) SubmitRender(_ context.Context, edit *shotstack.Edit) (string, error) {
	if r.submitErr != nil {
		return "", r.submitErr
	}
	if r.renderID == "" {
		r.renderID = "render-1"
	}
	return r.renderID, nil
}

func (r *fakeRenderer) GetRenderStatus(_ context.Context, renderID string) (*shotstack.RenderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return nil, r.statusErr
	}
	idx := r.polls
	r.polls++
	if idx >= len(r.statuses) {
		idx = len(r.statuses) - 1
	}
	return r.statuses[idx], nil
}

type fakePricer struct {
	prices map[string]float64
}

func (p *fakePricer) UnitPrice(_ context.Context, item string) float64 {
	return p.prices[item]
}

// ---- 存储桩 ----

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

const fakeStorageBase = "https://cdn.test"

func (s *fakeStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return fakeStorageBase + "/" + key, nil
}

func (s *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, apperr.WrapStorage("download", key, fmt.Errorf("not found"))
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) GetPresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return fakeStorageBase + "/" + key, nil
}

func (s *fakeStorage) GetPresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return fakeStorageBase + "/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) KeyFromURL(url string) (string, error) {
	prefix := fakeStorageBase + "/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):], nil
	}
	return "", apperr.NewUnsupportedURLFormat(url)
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) GetFileInfo(_ context.Context, key string) (*storage.FileInfo, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *fakeStorage) GetStorageType() string { return "fake" }
