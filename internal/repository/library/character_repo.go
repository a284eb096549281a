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

// CharacterRepository 角色仓库接口（供 service 层依赖）
type CharacterRepository interface {
	List(ctx context.Context) ([]*library.Character, error)
	FindByID(ctx context.Context, id string) (*library.Character, error)
	IncrementUsage(ctx context.Context, id string) error
	Upsert(ctx context.Context, c *library.Character) error
}

// CharacterRepo 角色仓库
type CharacterRepo struct {
	coll *mongo.Collection
}

// NewCharacterRepo 创建角色仓库
func NewCharacterRepo(db *mongo.Database) *CharacterRepo {
	var c library.Character
	return &CharacterRepo{coll: db.Collection(c.Collection())}
}

// List 查询全部角色
func (r *CharacterRepo) List(ctx context.Context) ([]*library.Character, error) {
	opts := options.Find().SetSort(bson.M{"id": 1})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var characters []*library.Character
	if err := cur.All(ctx, &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

// FindByID 根据ID查询
// 配音阶段以库中 voice_id 为准，不信任项目快照
func (r *CharacterRepo) FindByID(ctx context.Context, id string) (*library.Character, error) {
	var c library.Character
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("character", id)
		}
		return nil, err
	}
	return &c, nil
}

// IncrementUsage 累加使用次数
func (r *CharacterRepo) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// Upsert 按ID写入或更新角色（种子数据导入）
func (r *CharacterRepo) Upsert(ctx context.Context, c *library.Character) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"id": c.ID},
		c,
		options.Replace().SetUpsert(true),
	)
	return err
}
