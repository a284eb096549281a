package library

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reelforge/internal/model/library"
	"reelforge/internal/pkg/apperr"
)

// LocationRepository 场景地点仓库接口（供 service 层依赖）
type LocationRepository interface {
	List(ctx context.Context, locationType string) ([]*library.Location, error)
	FindByID(ctx context.Context, id string) (*library.Location, error)
	FindByIDs(ctx context.Context, ids []string) ([]*library.Location, error)
	IncrementUsage(ctx context.Context, ids []string) error
	AppendSampleImage(ctx context.Context, id, url string) error
	RemoveSampleImage(ctx context.Context, id, url string) error
	Upsert(ctx context.Context, loc *library.Location) error
}

// LocationRepo 场景地点仓库
type LocationRepo struct {
	coll *mongo.Collection
}

// NewLocationRepo 创建场景地点仓库
func NewLocationRepo(db *mongo.Database) *LocationRepo {
	var l library.Location
	return &LocationRepo{coll: db.Collection(l.Collection())}
}

// List 查询地点列表，locationType 为空时返回全部
func (r *LocationRepo) List(ctx context.Context, locationType string) ([]*library.Location, error) {
	filter := bson.M{}
	if locationType != "" {
		filter["type"] = locationType
	}
	opts := options.Find().SetSort(bson.M{"id": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var locations []*library.Location
	if err := cur.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindByID 根据ID查询
func (r *LocationRepo) FindByID(ctx context.Context, id string) (*library.Location, error) {
	var l library.Location
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("location", id)
		}
		return nil, err
	}
	return &l, nil
}

// FindByIDs 批量查询地点
func (r *LocationRepo) FindByIDs(ctx context.Context, ids []string) ([]*library.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var locations []*library.Location
	if err := cur.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// IncrementUsage 批量累加使用次数（脚本生成确定选址后调用）
func (r *LocationRepo) IncrementUsage(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(
		ctx,
		bson.M{"id": bson.M{"$in": ids}},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// AppendSampleImage 追加样例图片地址（场景图片生成后登记）
func (r *LocationRepo) AppendSampleImage(ctx context.Context, id, url string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$addToSet": bson.M{"sample_image_urls": url},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// RemoveSampleImage 移除样例图片地址（场景图片被替换或删除时）
func (r *LocationRepo) RemoveSampleImage(ctx context.Context, id, url string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$pull": bson.M{"sample_image_urls": url},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// Upsert 按ID写入或更新地点（种子数据导入）
func (r *LocationRepo) Upsert(ctx context.Context, loc *library.Location) error {
	now := time.Now()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}
	loc.UpdatedAt = now
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"id": loc.ID},
		loc,
		options.Replace().SetUpsert(true),
	)
	return err
}
