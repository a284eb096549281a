package library

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Topic 选题记录
// 脚本阶段成功后标记 generated=true 并递增 used_count（尽力而为，失败不影响阶段结果）
type Topic struct {
	ID         string    `bson:"id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Categories []string  `bson:"categories,omitempty" json:"categories,omitempty"`
	Generated  bool      `bson:"generated" json:"generated"`
	UsedCount  int       `bson:"used_count" json:"used_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (t *Topic) Collection() string { return "topics" }

// EnsureIndexes 创建和维护索引
func (t *Topic) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(t.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "generated", Value: 1}, {Key: "used_count", Value: 1}},
			Options: options.Index().SetName("idx_generated_used"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
