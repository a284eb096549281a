package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AudioAsset 独立的音频资产记录（配音或背景音乐）
// 项目对资产的"选中"只是指针拷贝（更新项目字段），资产记录独立存续，可反复选用或删除
type AudioAsset struct {
	ID          string         `bson:"id" json:"id"` // UUID
	ProjectID   string         `bson:"project_id" json:"project_id"`
	SessionID   string         `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Kind        AudioAssetKind `bson:"kind" json:"kind"`
	URL         string         `bson:"url" json:"url"`
	StoragePath string         `bson:"storage_path" json:"storage_path"`
	Cost        float64        `bson:"cost" json:"cost"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (a *AudioAsset) Collection() string { return "audio_assets" }

// EnsureIndexes 创建和维护索引
func (a *AudioAsset) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(a.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_project_kind_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
