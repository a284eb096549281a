package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"reelforge/internal/config"
	"reelforge/internal/model/auth"
	"reelforge/internal/model/library"
	"reelforge/internal/pkg/id"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/pkg/mongodb"
	"reelforge/internal/pkg/password"
	authrepo "reelforge/internal/repository/auth"
	libraryrepo "reelforge/internal/repository/library"
)

// 初始化脚本：创建管理员账号并填充参考库
// 用法：go run scripts/seed.go（配置搜索路径与 cmd/root.go 一致）
func main() {
	// 1. 加载配置（与 cmd/root.go 保持一致的搜索路径）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.reelforge")

	viper.SetEnvPrefix("REELFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		os.Exit(1)
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 连接 MongoDB
	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongo")
	}
	defer func() {
		_ = client.Close(context.Background())
	}()

	db := client.Database()
	ctx := context.Background()

	if err := mongodb.EnsureIndexes(db); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 3. 管理员账号
	if err := seedAdmin(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed admin failed")
	}

	// 4. 参考库
	if err := seedLibrary(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed reference library failed")
	}

	fmt.Println("Seed completed: admin user and reference library are ready")
}

func seedAdmin(ctx context.Context, db *mongo.Database) error {
	userRepo := authrepo.NewUserRepo(db)

	username := os.Getenv("INIT_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	passwordPlain := os.Getenv("INIT_ADMIN_PASSWORD")
	if passwordPlain == "" {
		passwordPlain = "admin123"
	}
	email := os.Getenv("INIT_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	user, err := userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("query user: %w", err)
		}

		log.Info().Str("username", username).Msg("admin user not found, will create")
		hashed, err := password.Hash(passwordPlain)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		now := time.Now()
		return userRepo.Create(ctx, &auth.User{
			ID:       id.New(),
			Username: username,
			Email:    email,
			Password: hashed,
			Role:     auth.RoleAdmin,
			Status:   auth.UserStatusActive,
			Profile: &auth.UserProfile{
				Nickname: "管理员",
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	// 已存在，更新为 admin + active
	log.Info().Str("username", username).Msg("admin user exists, will update role/status")
	update := bson.M{
		"$set": bson.M{
			"role":   auth.RoleAdmin,
			"status": auth.UserStatusActive,
			"email":  email,
		},
	}
	return userRepo.Update(ctx, user.ID, update)
}

func seedLibrary(ctx context.Context, db *mongo.Database) error {
	locations := libraryrepo.NewLocationRepo(db)
	for _, loc := range seedLocations {
		if err := locations.Upsert(ctx, loc); err != nil {
			return fmt.Errorf("upsert location %s: %w", loc.ID, err)
		}
	}

	characters := libraryrepo.NewCharacterRepo(db)
	for _, c := range seedCharacters {
		if err := characters.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert character %s: %w", c.ID, err)
		}
	}

	topics := libraryrepo.NewTopicRepo(db)
	for _, t := range seedTopics {
		if err := topics.Upsert(ctx, t); err != nil {
			return fmt.Errorf("upsert topic %s: %w", t.ID, err)
		}
	}

	actions := libraryrepo.NewActionRepo(db)
	for _, name := range seedActions {
		entry := &library.Action{ID: library.Slug(name.name), Name: name.name, Description: name.desc}
		if err := actions.Upsert(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("upsert action %s: %w", entry.ID, err)
		}
	}

	cameras := libraryrepo.NewCameraMovementRepo(db)
	for _, name := range seedCameraMovements {
		entry := &library.CameraMovement{ID: library.Slug(name.name), Name: name.name, Description: name.desc}
		if err := cameras.Upsert(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("upsert camera movement %s: %w", entry.ID, err)
		}
	}

	motions := libraryrepo.NewCharacterMotionRepo(db)
	for _, name := range seedCharacterMotions {
		entry := &library.CharacterMotion{ID: library.Slug(name.name), Name: name.name, Description: name.desc}
		if err := motions.Upsert(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("upsert character motion %s: %w", entry.ID, err)
		}
	}

	themes := libraryrepo.NewMusicThemeRepo(db)
	for _, name := range seedMusicThemes {
		entry := &library.MusicTheme{ID: library.Slug(name.name), Name: name.name, Description: name.desc}
		if err := themes.Upsert(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("upsert music theme %s: %w", entry.ID, err)
		}
	}

	instruments := libraryrepo.NewInstrumentRepo(db)
	for _, name := range seedInstruments {
		entry := &library.Instrument{ID: library.Slug(name.name), Name: name.name, Description: name.desc}
		if err := instruments.Upsert(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("upsert instrument %s: %w", entry.ID, err)
		}
	}

	return nil
}

type namedEntry struct {
	name string
	desc string
}

var seedLocations = []*library.Location{
	{
		ID:          "neon-alley",
		Name:        "霓虹小巷",
		Type:        "urban",
		Description: "雨后的城市小巷，霓虹灯牌倒映在湿漉漉的路面上",
		Tags:        []string{"night", "city"},
		VisualCharacteristics: &library.VisualCharacteristics{
			Lighting:     "neon glow",
			ColorPalette: "magenta and cyan",
			Atmosphere:   "noir",
			TimeOfDay:    "night",
		},
	},
	{
		ID:          "rooftop-garden",
		Name:        "天台花园",
		Type:        "urban",
		Description: "高楼天台上的小花园，远处是城市天际线",
		Tags:        []string{"city", "green"},
		VisualCharacteristics: &library.VisualCharacteristics{
			Lighting:     "golden hour",
			ColorPalette: "warm orange",
			Atmosphere:   "serene",
			TimeOfDay:    "sunset",
		},
	},
	{
		ID:          "pine-forest",
		Name:        "松林小径",
		Type:        "nature",
		Description: "晨雾弥漫的松树林，林间小径铺满松针",
		Tags:        []string{"forest", "mist"},
		VisualCharacteristics: &library.VisualCharacteristics{
			Lighting:     "soft diffused",
			ColorPalette: "deep green",
			Atmosphere:   "mysterious",
			TimeOfDay:    "morning",
		},
	},
	{
		ID:          "seaside-cliff",
		Name:        "海边悬崖",
		Type:        "nature",
		Description: "海浪拍打的悬崖边，海鸥在风中盘旋",
		Tags:        []string{"sea", "wind"},
	},
	{
		ID:          "old-library",
		Name:        "旧图书馆",
		Type:        "indoor",
		Description: "高大的木质书架之间洒进一束束尘光",
		Tags:        []string{"books", "quiet"},
		VisualCharacteristics: &library.VisualCharacteristics{
			Lighting:     "dusty sunbeams",
			ColorPalette: "amber and brown",
			Atmosphere:   "nostalgic",
			TimeOfDay:    "afternoon",
		},
	},
	{
		ID:          "night-kitchen",
		Name:        "深夜厨房",
		Type:        "indoor",
		Description: "只开着一盏吊灯的家庭厨房，锅里冒着热气",
		Tags:        []string{"home", "warm"},
	},
}

var seedCharacters = []*library.Character{
	{
		ID:          "narrator-lin",
		Name:        "林晓",
		Gender:      "female",
		Age:         28,
		VoiceID:     "21m00Tcm4TlvDq8ikWAM",
		Description: "清亮沉稳的女声，适合知识科普类内容",
	},
	{
		ID:          "narrator-zhou",
		Name:        "周野",
		Gender:      "male",
		Age:         35,
		VoiceID:     "pNInz6obpgDQGcFmaJgB",
		Description: "低沉磁性的男声，适合悬疑和历史题材",
	},
}

var seedTopics = []*library.Topic{
	{ID: id.New(), Title: "为什么猫总是落地时四脚着地", Categories: []string{"science", "animals"}},
	{ID: id.New(), Title: "一分钟看懂黑洞照片是怎么拍出来的", Categories: []string{"science", "space"}},
	{ID: id.New(), Title: "古罗马人一天的生活", Categories: []string{"history"}},
	{ID: id.New(), Title: "深海里最奇怪的五种生物", Categories: []string{"nature", "ocean"}},
}

var seedActions = []namedEntry{
	{"Walking Forward", "角色向镜头方向缓步走来"},
	{"Looking Around", "角色环顾四周，视线缓慢移动"},
	{"Reaching Out", "角色伸手触碰眼前的物体"},
	{"Sitting Down", "角色缓缓坐下"},
}

var seedCameraMovements = []namedEntry{
	{"Slow Push In", "镜头缓慢向前推进，聚焦主体"},
	{"Orbit Right", "镜头绕主体向右环绕"},
	{"Crane Up", "镜头垂直上升，逐渐展现全景"},
	{"Handheld Drift", "轻微的手持漂移感，增加真实感"},
}

var seedCharacterMotions = []namedEntry{
	{"Hair In Wind", "发丝在微风中轻轻飘动"},
	{"Subtle Breathing", "自然的呼吸起伏"},
	{"Turning Head", "头部缓慢转向镜头"},
}

var seedMusicThemes = []namedEntry{
	{"Lo-fi Chill", "放松的 lo-fi 节拍，适合日常话题"},
	{"Epic Orchestral", "宏大的管弦乐，适合历史和太空题材"},
	{"Ambient Mystery", "空灵的氛围音，适合悬疑内容"},
}

var seedInstruments = []namedEntry{
	{"Piano", "钢琴"},
	{"Strings", "弦乐组"},
	{"Synth Pad", "合成器铺底"},
	{"Acoustic Guitar", "木吉他"},
}
