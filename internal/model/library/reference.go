package library

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 参考库目录项：动作、镜头运动、人物动态、音乐主题、乐器
// 均为只读目录，Orchestrator 仅在被选中时递增 usage_count

// Action 动作/姿态
type Action struct {
	ID          string    `bson:"id" json:"id"` // slug
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (a *Action) Collection() string { return "actions" }

// EnsureIndexes 创建和维护索引
func (a *Action) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureSlugIndex(ctx, db, a.Collection())
}

// CameraMovement 镜头运动
type CameraMovement struct {
	ID          string    `bson:"id" json:"id"` // slug
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (c *CameraMovement) Collection() string { return "camera_movements" }

// EnsureIndexes 创建和维护索引
func (c *CameraMovement) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureSlugIndex(ctx, db, c.Collection())
}

// CharacterMotion 人物动态
type CharacterMotion struct {
	ID          string    `bson:"id" json:"id"` // slug
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (m *CharacterMotion) Collection() string { return "character_motions" }

// EnsureIndexes 创建和维护索引
func (m *CharacterMotion) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureSlugIndex(ctx, db, m.Collection())
}

// MusicTheme 音乐主题
type MusicTheme struct {
	ID          string    `bson:"id" json:"id"` // slug
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (t *MusicTheme) Collection() string { return "music_themes" }

// EnsureIndexes 创建和维护索引
func (t *MusicTheme) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureSlugIndex(ctx, db, t.Collection())
}

// Instrument 乐器
type Instrument struct {
	ID          string    `bson:"id" json:"id"` // slug
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UsageCount  int       `bson:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (i *Instrument) Collection() string { return "instruments" }

// EnsureIndexes 创建和维护索引
func (i *Instrument) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureSlugIndex(ctx, db, i.Collection())
}

func ensureSlugIndex(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetName("idx_id").SetUnique(true),
	})
	return err
}
