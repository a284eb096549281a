package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reelforge/internal/model/pipeline"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/scripttools"
)

// SceneRepository 场景仓库接口（供 service 层依赖）
type SceneRepository interface {
	ReplaceAll(ctx context.Context, projectID string, scenes []*pipeline.Scene) error
	FindByProject(ctx context.Context, projectID string) ([]*pipeline.Scene, error)
	FindOne(ctx context.Context, projectID string, sceneID int) (*pipeline.Scene, error)
	UpdateFields(ctx context.Context, projectID string, sceneID int, fields bson.M) error
	SetApproved(ctx context.Context, projectID string, sceneID int, approved bool) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// SceneRepo 场景仓库
type SceneRepo struct {
	coll *mongo.Collection
}

// NewSceneRepo 创建场景仓库
func NewSceneRepo(db *mongo.Database) *SceneRepo {
	var s pipeline.Scene
	return &SceneRepo{coll: db.Collection(s.Collection())}
}

// ReplaceAll 原子替换项目的全部场景（脚本重新生成时使用）
// 写入前对每个场景的时长做合法区间收敛
func (r *SceneRepo) ReplaceAll(ctx context.Context, projectID string, scenes []*pipeline.Scene) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return err
	}

	now := time.Now()
	docs := make([]any, 0, len(scenes))
	for _, s := range scenes {
		s.ProjectID = projectID
		s.Duration = scripttools.ClampSceneDuration(s.Duration)
		s.CreatedAt = now
		s.UpdatedAt = now
		docs = append(docs, s)
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

// FindByProject 查询项目的全部场景，按场景号升序
func (r *SceneRepo) FindByProject(ctx context.Context, projectID string) ([]*pipeline.Scene, error) {
	opts := options.Find().SetSort(bson.M{"scene_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var scenes []*pipeline.Scene
	if err := cur.All(ctx, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// FindOne 查询单个场景
func (r *SceneRepo) FindOne(ctx context.Context, projectID string, sceneID int) (*pipeline.Scene, error) {
	var s pipeline.Scene
	filter := bson.M{"project_id": projectID, "scene_id": sceneID}
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("scene", fmt.Sprintf("%s/%d", projectID, sceneID))
		}
		return nil, err
	}
	return &s, nil
}

// UpdateFields 浅合并更新场景字段，时长自动收敛到合法区间
func (r *SceneRepo) UpdateFields(ctx context.Context, projectID string, sceneID int, fields bson.M) error {
	if d, ok := fields["duration"]; ok {
		switch v := d.(type) {
		case int:
			fields["duration"] = scripttools.ClampSceneDuration(v)
		case int32:
			fields["duration"] = scripttools.ClampSceneDuration(int(v))
		case int64:
			fields["duration"] = scripttools.ClampSceneDuration(int(v))
		case float64:
			fields["duration"] = scripttools.ClampSceneDuration(int(v))
		}
	}
	fields["updated_at"] = time.Now()

	filter := bson.M{"project_id": projectID, "scene_id": sceneID}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("scene", fmt.Sprintf("%s/%d", projectID, sceneID))
	}
	return nil
}

// SetApproved 更新场景审批标记
func (r *SceneRepo) SetApproved(ctx context.Context, projectID string, sceneID int, approved bool) error {
	return r.UpdateFields(ctx, projectID, sceneID, bson.M{"approved": approved})
}

// DeleteByProject 删除项目的全部场景
func (r *SceneRepo) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"project_id": projectID})
	return err
}
