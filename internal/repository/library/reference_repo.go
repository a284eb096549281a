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

// CatalogEntry 目录项约束：五类参考目录结构一致
type CatalogEntry interface {
	library.Action | library.CameraMovement | library.CharacterMotion | library.MusicTheme | library.Instrument
}

// CatalogRepo 参考目录仓库
// 动作、镜头运动、人物动态、音乐主题、乐器共用同一套读写逻辑
type CatalogRepo[T CatalogEntry] struct {
	coll     *mongo.Collection
	resource string
}

func newCatalogRepo[T CatalogEntry](db *mongo.Database, collection, resource string) *CatalogRepo[T] {
	return &CatalogRepo[T]{coll: db.Collection(collection), resource: resource}
}

// ActionRepo 动作目录仓库
type ActionRepo = CatalogRepo[library.Action]

// NewActionRepo 创建动作目录仓库
func NewActionRepo(db *mongo.Database) *ActionRepo {
	var a library.Action
	return newCatalogRepo[library.Action](db, a.Collection(), "action")
}

// CameraMovementRepo 镜头运动目录仓库
type CameraMovementRepo = CatalogRepo[library.CameraMovement]

// NewCameraMovementRepo 创建镜头运动目录仓库
func NewCameraMovementRepo(db *mongo.Database) *CameraMovementRepo {
	var c library.CameraMovement
	return newCatalogRepo[library.CameraMovement](db, c.Collection(), "camera_movement")
}

// CharacterMotionRepo 人物动态目录仓库
type CharacterMotionRepo = CatalogRepo[library.CharacterMotion]

// NewCharacterMotionRepo 创建人物动态目录仓库
func NewCharacterMotionRepo(db *mongo.Database) *CharacterMotionRepo {
	var m library.CharacterMotion
	return newCatalogRepo[library.CharacterMotion](db, m.Collection(), "character_motion")
}

// MusicThemeRepo 音乐主题目录仓库
type MusicThemeRepo = CatalogRepo[library.MusicTheme]

// NewMusicThemeRepo 创建音乐主题目录仓库
func NewMusicThemeRepo(db *mongo.Database) *MusicThemeRepo {
	var t library.MusicTheme
	return newCatalogRepo[library.MusicTheme](db, t.Collection(), "music_theme")
}

// InstrumentRepo 乐器目录仓库
type InstrumentRepo = CatalogRepo[library.Instrument]

// NewInstrumentRepo 创建乐器目录仓库
func NewInstrumentRepo(db *mongo.Database) *InstrumentRepo {
	var i library.Instrument
	return newCatalogRepo[library.Instrument](db, i.Collection(), "instrument")
}

// List 查询全部目录项，按 slug 升序
func (r *CatalogRepo[T]) List(ctx context.Context) ([]*T, error) {
	opts := options.Find().SetSort(bson.M{"id": 1})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []*T
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByID 根据 slug 查询
func (r *CatalogRepo[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entry T
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound(r.resource, id)
		}
		return nil, err
	}
	return &entry, nil
}

// IncrementUsage 累加使用次数
func (r *CatalogRepo[T]) IncrementUsage(ctx context.Context, id string) error {
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

// Upsert 按 slug 写入或更新目录项（种子数据导入）
func (r *CatalogRepo[T]) Upsert(ctx context.Context, id string, entry *T) error {
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"id": id},
		entry,
		options.Replace().SetUpsert(true),
	)
	return err
}
