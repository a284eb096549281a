package pipeline

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
)

// ProjectRepository 项目仓库接口（供 service 层依赖）
type ProjectRepository interface {
	Create(ctx context.Context, project *pipeline.Project) error
	FindByID(ctx context.Context, id string) (*pipeline.Project, error)
	List(ctx context.Context, status string, page, pageSize int64) ([]*pipeline.Project, int64, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	SetStatus(ctx context.Context, id string, status pipeline.ProjectStatus, step int) error
	AccrueCost(ctx context.Context, id string, deltas map[string]float64) error
	Delete(ctx context.Context, id string) error
}

// ProjectRepo 项目仓库
type ProjectRepo struct {
	coll *mongo.Collection
}

// NewProjectRepo 创建项目仓库
func NewProjectRepo(db *mongo.Database) *ProjectRepo {
	var p pipeline.Project
	return &ProjectRepo{coll: db.Collection(p.Collection())}
}

// Create 创建项目
func (r *ProjectRepo) Create(ctx context.Context, project *pipeline.Project) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, project)
	return err
}

// FindByID 根据ID查询，未找到时返回 NotFoundError
func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*pipeline.Project, error) {
	var p pipeline.Project
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("project", id)
		}
		return nil, err
	}
	return &p, nil
}

// List 分页查询项目，status 为空时不过滤
func (r *ProjectRepo) List(ctx context.Context, status string, page, pageSize int64) ([]*pipeline.Project, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var projects []*pipeline.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// UpdateFields 浅合并更新指定字段并自增版本号
func (r *ProjectRepo) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now()
	update := bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("project", id)
	}
	return nil
}

// SetStatus 更新流水线状态与当前步骤
func (r *ProjectRepo) SetStatus(ctx context.Context, id string, status pipeline.ProjectStatus, step int) error {
	return r.UpdateFields(ctx, id, bson.M{
		"status":       status,
		"current_step": step,
	})
}

// AccrueCost 按字段路径原子累加成本账本
// 单条 $inc 落库，并发的阶段调用（如逐场景图片生成）不会互相覆盖
func (r *ProjectRepo) AccrueCost(ctx context.Context, id string, deltas map[string]float64) error {
	if len(deltas) == 0 {
		return nil
	}
	inc := bson.M{"version": 1}
	for path, delta := range deltas {
		inc["costs."+path] = delta
	}
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("project", id)
	}
	return nil
}

// Delete 删除项目文档
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NewNotFound("project", id)
	}
	return nil
}
