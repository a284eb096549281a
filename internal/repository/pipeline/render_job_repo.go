package pipeline

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
)

// RenderJobRepository 渲染任务仓库接口（供 service 层依赖）
type RenderJobRepository interface {
	Create(ctx context.Context, job *pipeline.RenderJob) error
	FindByID(ctx context.Context, id string) (*pipeline.RenderJob, error)
	FindActiveByProject(ctx context.Context, projectID string) (*pipeline.RenderJob, error)
	FindPending(ctx context.Context) ([]*pipeline.RenderJob, error)
	RecordAttempt(ctx context.Context, id string, attempt int, lastStatus string, nextPollAt time.Time) error
	Finish(ctx context.Context, id string, status pipeline.RenderJobStatus, errMsg string) error
}

// RenderJobRepo 渲染任务仓库
// 轮询进度持久化在任务文档中，进程重启后可恢复
type RenderJobRepo struct {
	coll *mongo.Collection
}

// NewRenderJobRepo 创建渲染任务仓库
func NewRenderJobRepo(db *mongo.Database) *RenderJobRepo {
	var j pipeline.RenderJob
	return &RenderJobRepo{coll: db.Collection(j.Collection())}
}

// Create 创建渲染任务
func (r *RenderJobRepo) Create(ctx context.Context, job *pipeline.RenderJob) error {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, job)
	return err
}

// FindByID 根据ID查询
func (r *RenderJobRepo) FindByID(ctx context.Context, id string) (*pipeline.RenderJob, error) {
	var j pipeline.RenderJob
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("render_job", id)
		}
		return nil, err
	}
	return &j, nil
}

// FindActiveByProject 查询项目当前进行中的渲染任务，不存在时返回 nil
func (r *RenderJobRepo) FindActiveByProject(ctx context.Context, projectID string) (*pipeline.RenderJob, error) {
	var j pipeline.RenderJob
	filter := bson.M{"project_id": projectID, "status": pipeline.RenderJobPending}
	if err := r.coll.FindOne(ctx, filter).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

// FindPending 查询全部未完成的渲染任务（进程启动时的恢复扫描）
func (r *RenderJobRepo) FindPending(ctx context.Context) ([]*pipeline.RenderJob, error) {
	cur, err := r.coll.Find(ctx, bson.M{"status": pipeline.RenderJobPending})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []*pipeline.RenderJob
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// RecordAttempt 记录一次轮询结果
func (r *RenderJobRepo) RecordAttempt(ctx context.Context, id string, attempt int, lastStatus string, nextPollAt time.Time) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"attempt":      attempt,
			"last_status":  lastStatus,
			"next_poll_at": nextPollAt,
			"updated_at":   time.Now(),
		}},
	)
	return err
}

// Finish 将任务置为终态
func (r *RenderJobRepo) Finish(ctx context.Context, id string, status pipeline.RenderJobStatus, errMsg string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"status":     status,
			"error":      errMsg,
			"updated_at": time.Now(),
		}},
	)
	return err
}
