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

// AudioAssetRepository 音频资产仓库接口（供 service 层依赖）
type AudioAssetRepository interface {
	Create(ctx context.Context, asset *pipeline.AudioAsset) error
	FindByID(ctx context.Context, id string) (*pipeline.AudioAsset, error)
	FindByProject(ctx context.Context, projectID string, kind pipeline.AudioAssetKind) ([]*pipeline.AudioAsset, error)
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// AudioAssetRepo 音频资产仓库
type AudioAssetRepo struct {
	coll *mongo.Collection
}

// NewAudioAssetRepo 创建音频资产仓库
func NewAudioAssetRepo(db *mongo.Database) *AudioAssetRepo {
	var a pipeline.AudioAsset
	return &AudioAssetRepo{coll: db.Collection(a.Collection())}
}

// Create 创建音频资产记录
func (r *AudioAssetRepo) Create(ctx context.Context, asset *pipeline.AudioAsset) error {
	asset.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, asset)
	return err
}

// FindByID 根据ID查询
func (r *AudioAssetRepo) FindByID(ctx context.Context, id string) (*pipeline.AudioAsset, error) {
	var a pipeline.AudioAsset
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("audio_asset", id)
		}
		return nil, err
	}
	return &a, nil
}

// FindByProject 查询项目下指定种类的音频资产，kind 为空时返回全部
func (r *AudioAssetRepo) FindByProject(ctx context.Context, projectID string, kind pipeline.AudioAssetKind) ([]*pipeline.AudioAsset, error) {
	filter := bson.M{"project_id": projectID}
	if kind != "" {
		filter["kind"] = kind
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assets []*pipeline.AudioAsset
	if err := cur.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Delete 删除音频资产记录
func (r *AudioAssetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NewNotFound("audio_asset", id)
	}
	return nil
}

// DeleteByProject 删除项目的全部音频资产记录
func (r *AudioAssetRepo) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"project_id": projectID})
	return err
}
