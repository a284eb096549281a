package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RenderJob 渲染轮询任务（持久化，进程重启后可恢复）
// 每个 (project_id, render_id) 同时只允许一个活跃任务
type RenderJob struct {
	ID         string          `bson:"id" json:"id"` // UUID
	ProjectID  string          `bson:"project_id" json:"project_id"`
	RenderID   string          `bson:"render_id" json:"render_id"`
	Status     RenderJobStatus `bson:"status" json:"status"`
	Attempt    int             `bson:"attempt" json:"attempt"`           // 已执行的轮询次数
	NextPollAt time.Time       `bson:"next_poll_at" json:"next_poll_at"` // 下次轮询时间
	LastStatus string          `bson:"last_status,omitempty" json:"last_status,omitempty"`
	Error      string          `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (j *RenderJob) Collection() string { return "render_jobs" }

// EnsureIndexes 创建和维护索引
func (j *RenderJob) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(j.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_project_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "next_poll_at", Value: 1}},
			Options: options.Index().SetName("idx_status_next_poll"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
