package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reelforge/internal/model/library"
	"reelforge/internal/model/pipeline"
)

// EnsureIndexes 创建所有模型的索引
// 这是一个统一的入口，用于在应用启动时创建所有模型的索引
// 如果模型实现了 Model 接口，会自动调用其 EnsureIndexes 方法
// 对于尚未迁移到新接口的模型，仍然在这里手动创建索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// 使用 Model 接口的模型
	models := []Model{
		&pipeline.Project{},
		&pipeline.Scene{},
		&pipeline.AudioAsset{},
		&pipeline.RenderJob{},
		&library.Location{},
		&library.Character{},
		&library.Topic{},
		&library.Action{},
		&library.CameraMovement{},
		&library.CharacterMotion{},
		&library.MusicTheme{},
		&library.Instrument{},
	}

	// 为实现了 Model 接口的模型创建索引
	if err := EnsureAllIndexes(ctx, db, models...); err != nil {
		return err
	}

	// users 集合索引（用户模型尚未迁移到 Model 接口）
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "role", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_role_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	return CreateIndexes(ctx, userColl, userIndexes)
}
