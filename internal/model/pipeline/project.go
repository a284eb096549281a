package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reelforge/internal/pkg/costs"
)

// SelectedCharacter 项目选定的解说角色快照
type SelectedCharacter struct {
	CharacterID string `bson:"character_id" json:"character_id"`
	Name        string `bson:"name" json:"name"`
	Gender      string `bson:"gender" json:"gender"`
	Age         int    `bson:"age" json:"age"`
	VoiceID     string `bson:"voice_id" json:"voice_id"`
}

// Project 视频项目聚合根
// 成本累计遵循 costs.Add 的嵌套合并规则：total 恒等于所有入账之和
type Project struct {
	ID         string   `bson:"id" json:"id"` // UUID
	Topic      string   `bson:"topic" json:"topic"`
	TopicID    string   `bson:"topic_id,omitempty" json:"topic_id,omitempty"` // 来源选题
	Script     string   `bson:"script,omitempty" json:"script,omitempty"`
	SceneCount int      `bson:"scene_count" json:"scene_count"`
	Categories []string `bson:"categories,omitempty" json:"categories,omitempty"`

	Character *SelectedCharacter `bson:"character,omitempty" json:"character,omitempty"`

	// 旧版场景序号（1 起）到地点ID的映射；新数据以 Scene.location_id 为准，
	// 读取时优先场景字段、缺失时回退到这里（兼容存量数据，不做静默迁移）
	LocationMapping map[string]string `bson:"location_mapping,omitempty" json:"location_mapping,omitempty"`

	VoiceoverID  string `bson:"voiceover_id,omitempty" json:"voiceover_id,omitempty"`
	VoiceoverURL string `bson:"voiceover_url,omitempty" json:"voiceover_url,omitempty"`

	BackgroundMusicID     string `bson:"background_music_id,omitempty" json:"background_music_id,omitempty"`
	BackgroundMusicURL    string `bson:"background_music_url,omitempty" json:"background_music_url,omitempty"`
	BackgroundMusicPrompt string `bson:"background_music_prompt,omitempty" json:"background_music_prompt,omitempty"`

	// 合成/轮询阶段关联的旧版 Session 记录
	SessionID string `bson:"session_id,omitempty" json:"session_id,omitempty"`

	Status      ProjectStatus `bson:"status" json:"status"`
	CurrentStep int           `bson:"current_step" json:"current_step"` // 1..5
	Error       string        `bson:"error,omitempty" json:"error,omitempty"`

	Costs costs.Costs `bson:"costs" json:"costs"`

	RenderID      string `bson:"render_id,omitempty" json:"render_id,omitempty"`
	FinalVideoURL string `bson:"final_video_url,omitempty" json:"final_video_url,omitempty"`

	// 乐观并发版本号，UpdateFields 时自增
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (p *Project) Collection() string { return "projects" }

// EnsureIndexes 创建和维护索引
func (p *Project) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(p.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
