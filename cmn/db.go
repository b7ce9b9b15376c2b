package cmn

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	GormDB *gorm.DB
)

func InitDB() {
	// 运行记录落库是可选能力，未开启时只在内存和日志中保留结果
	enable := viper.GetBool("dbms.enable")
	if !enable {
		MiniLogger.Info("[ -- ] db module disabled")
		return
	}

	// 从配置文件中读取数据库连接配置
	host := viper.GetString("dbms.host")
	port := viper.GetString("dbms.port")
	user := viper.GetString("dbms.user")
	pwd := viper.GetString("dbms.pwd")
	dbname := viper.GetString("dbms.db")
	if host == "" || port == "" || user == "" || pwd == "" || dbname == "" {
		logger.Fatal("[ FAIL ] db config not found")
		return
	}

	// 构建连接字符串
	dsn := fmt.Sprintf("user=%v password=%v dbname=%v host=%v port=%v sslmode=disable TimeZone=Asia/Shanghai", user, pwd, dbname, host, port)

	// 初始化数据库连接池
	var err error
	GormDB, err = initDBPool(dsn)
	if err != nil {
		logger.Fatal("[ FAIL ] init db pool failed: " + err.Error())
		return
	}

	// 删除所有视图，表结构变化时旧视图会挡住迁移
	err = dropAllViews(GormDB)
	if err != nil {
		logger.Fatal("[ FAIL ] drop all views failed: " + err.Error())
	}

	// 初始化表
	err = initTable(GormDB)
	if err != nil {
		logger.Fatal("[ FAIL ] init table failed: " + err.Error())
	}

	// 初始化视图
	err = initView(GormDB)
	if err != nil {
		logger.Fatal("[ FAIL ] init view failed: " + err.Error())
	}

	MiniLogger.Info("[ OK ] db module initialed")
}

// DBEnabled 数据库模块是否已启用
func DBEnabled() bool {
	return GormDB != nil
}

// 初始化数据库连接池
func initDBPool(dsn string) (*gorm.DB, error) {
	// 连接 Gorm 数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Error),
	})
	if err != nil {
		logger.Error("connect to pg failed: " + err.Error())
		return nil, err
	}

	// 获取底层的 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("get sql.DB failed: " + err.Error())
		return nil, err
	}

	// 配置连接池
	sqlDB.SetMaxIdleConns(10)             // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100)            // 最大打开连接数
	sqlDB.SetConnMaxLifetime(time.Hour)   // 连接的最大存活时间
	sqlDB.SetConnMaxIdleTime(time.Minute) // 空闲连接的最大存活时间

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		logger.Error("ping pg failed: " + err.Error())
		return nil, err
	}

	logger.Info("PG pool initialed")

	return db, nil
}

// 初始化表
func initTable(db *gorm.DB) error {
	// 自动迁移
	err := db.AutoMigrate(
		&TRunBatch{},
		&TRunResult{})
	if err != nil {
		logger.Error("auto migrate failed: " + err.Error())
		return err
	}

	logger.Info("PG table initialed")
	return nil
}

// 初始化视图
func initView(db *gorm.DB) error {
	// 创建 v_run_result_batch 视图
	// 把批次信息连接到每条账号结果上
	q := db.
		Table("t_run_result AS rr").
		Select(`
        rr.id,
        rr.batch_id,
        b.source,
        rr.username,
        rr.display_name,
        rr.success,
        rr.error_msg,
        rr.reward_claimed,
        rr.quota,
        rr.token_count,
        rr.uploaded_keys,
        b.started_at,
        b.finished_at,
        rr.created_at
    `).
		Joins("LEFT JOIN t_run_batch AS b ON rr.batch_id = b.id")

	// 创建视图
	err := db.Migrator().CreateView(
		VRunResultBatch{}.TableName(),
		gorm.ViewOption{Query: q},
	)
	if err != nil {
		logger.Error("create v_run_result_batch failed: " + err.Error())
		return err
	}

	logger.Info("PG view initialed")

	return nil
}

// 删除当前 schema 中的所有视图
func dropAllViews(db *gorm.DB) error {
	type ViewInfo struct {
		ViewName string
	}

	var views []ViewInfo
	// 查询当前 schema 下所有视图名称
	err := db.Raw(`
		SELECT table_name AS view_name
		FROM information_schema.views
		WHERE table_schema = current_schema()
	`).Scan(&views).Error

	if err != nil {
		logger.Error("failed to query views", zap.Error(err))
		return err
	}

	for _, view := range views {
		dropSQL := fmt.Sprintf(`DROP VIEW IF EXISTS "%s" CASCADE`, view.ViewName)
		if err := db.Exec(dropSQL).Error; err != nil {
			logger.Error("failed to drop view", zap.String("view", view.ViewName), zap.Error(err))
			return err
		}
	}

	logger.Info("All views dropped", zap.Int("count", len(views)))
	return nil
}
