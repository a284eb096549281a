package library

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VisualCharacteristics 地点的结构化视觉特征
type VisualCharacteristics struct {
	Lighting     string `bson:"lighting,omitempty" json:"lighting,omitempty"`           // 光照
	ColorPalette string `bson:"color_palette,omitempty" json:"color_palette,omitempty"` // 色调
	Atmosphere   string `bson:"atmosphere,omitempty" json:"atmosphere,omitempty"`       // 氛围
	TimeOfDay    string `bson:"time_of_day,omitempty" json:"time_of_day,omitempty"`     // 时段
}

// Location 地点目录项
// ID 为由名称派生的 slug；Orchestrator 只读，仅在被选中时递增 usage_count
type Location struct {
	ID                    string                 `bson:"id" json:"id"` // slug
	Name                  string                 `bson:"name" json:"name"`
	Type                  string                 `bson:"type" json:"type"` // 地点类型（用于多样性选择）
	Description           string                 `bson:"description" json:"description"`
	Tags                  []string               `bson:"tags,omitempty" json:"tags,omitempty"`
	VisualCharacteristics *VisualCharacteristics `bson:"visual_characteristics,omitempty" json:"visual_characteristics,omitempty"`
	UsageCount            int                    `bson:"usage_count" json:"usage_count"`
	SampleImageURLs       []string               `bson:"sample_image_urls,omitempty" json:"sample_image_urls,omitempty"`
	CreatedAt             time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time              `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (l *Location) Collection() string { return "locations" }

// EnsureIndexes 创建和维护索引
func (l *Location) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(l.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_type"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
