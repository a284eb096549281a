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

// TopicRepository 选题仓库接口（供 service 层依赖）
type TopicRepository interface {
	List(ctx context.Context, limit int64) ([]*library.Topic, error)
	FindByID(ctx context.Context, id string) (*library.Topic, error)
	MarkGenerated(ctx context.Context, id string) error
	Upsert(ctx context.Context, t *library.Topic) error
}

// TopicRepo 选题仓库
type TopicRepo struct {
	coll *mongo.Collection
}

// NewTopicRepo 创建选题仓库
func NewTopicRepo(db *mongo.Database) *TopicRepo {
	var t library.Topic
	return &TopicRepo{coll: db.Collection(t.Collection())}
}

// List 查询选题列表，未生成过的在前
func (r *TopicRepo) List(ctx context.Context, limit int64) ([]*library.Topic, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "generated", Value: 1},
		{Key: "used_count", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var topics []*library.Topic
	if err := cur.All(ctx, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// FindByID 根据ID查询
func (r *TopicRepo) FindByID(ctx context.Context, id string) (*library.Topic, error) {
	var t library.Topic
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("topic", id)
		}
		return nil, err
	}
	return &t, nil
}

// MarkGenerated 标记选题已用于生成并累加次数
// 尽力而为：失败不阻塞脚本生成，由调用方记日志
func (r *TopicRepo) MarkGenerated(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$set": bson.M{"generated": true, "updated_at": time.Now()},
			"$inc": bson.M{"used_count": 1},
		},
	)
	return err
}

// Upsert 按ID写入或更新选题（种子数据导入）
func (r *TopicRepo) Upsert(ctx context.Context, t *library.Topic) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"id": t.ID},
		t,
		options.Replace().SetUpsert(true),
	)
	return err
}
