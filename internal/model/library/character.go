package library

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Character 解说角色（叙述者）
// voice_id 以本目录为准，脚本/配音阶段会重新读取以覆盖调用方传入的陈旧值
type Character struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Gender      string    `bson:"gender" json:"gender"`
	Age         int       `bson:"age" json:"age"`
	VoiceID     string    `bson:"voice_id" json:"voice_id"` // 语音合成的音色ID
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (c *Character) Collection() string { return "characters" }

// EnsureIndexes 创建和维护索引
func (c *Character) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(c.Collection()).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetName("idx_id").SetUnique(true),
	})
	return err
}
