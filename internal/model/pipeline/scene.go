package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scene 项目下的场景（子文档集合，scene_id 从 1 起）
// duration 持久化前必须钳制到 [1,15]，不允许越界入库
// 不变式：合成阶段只有在同项目所有场景 approved==true 时才允许使用 video_url
type Scene struct {
	ProjectID string `bson:"project_id" json:"project_id"`
	ID        int    `bson:"scene_id" json:"id"` // 1 起的场景序号
	Duration  int    `bson:"duration" json:"duration"`

	Voiceover    string `bson:"voiceover,omitempty" json:"voiceover,omitempty"`
	ImagePrompt  string `bson:"image_prompt,omitempty" json:"image_prompt,omitempty"`
	MotionPrompt string `bson:"motion_prompt,omitempty" json:"motion_prompt,omitempty"`

	LocationID        string `bson:"location_id,omitempty" json:"location_id,omitempty"`
	ActionID          string `bson:"action_id,omitempty" json:"action_id,omitempty"`
	CameraMovementID  string `bson:"camera_movement_id,omitempty" json:"camera_movement_id,omitempty"`
	CharacterMotionID string `bson:"character_motion_id,omitempty" json:"character_motion_id,omitempty"`

	ImageURL string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	VideoURL string `bson:"video_url,omitempty" json:"video_url,omitempty"`

	Approved bool `bson:"approved" json:"approved"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (s *Scene) Collection() string { return "scenes" }

// EnsureIndexes 创建和维护索引
func (s *Scene) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(s.Collection()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "scene_id", Value: 1}},
		Options: options.Index().SetName("idx_project_scene").SetUnique(true),
	})
	return err
}
