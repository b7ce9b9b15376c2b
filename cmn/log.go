package cmn

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logDir = "logs"
)

var (
	logger     *zap.Logger
	MiniLogger *zap.Logger
	once       sync.Once = sync.Once{}
)

func InitLogger(debug bool) {
	once = sync.Once{}
	once.Do(func() {
		// 初始化日志文件目录
		err := InitDir(logDir)
		if err != nil {
			fmt.Printf("init log dir failed: %v\n", err)
			os.Exit(1)
		}

		// 日志文件名带启动时间戳，一次运行一个文件
		timestamp := time.Now().Format("2006-01-02T15-04-05")
		logFileName := fmt.Sprintf("%s/%s.log", logDir, timestamp)

		// 初始化日志
		err = initLogger(debug, logFileName)
		if err != nil {
			fmt.Printf("init logger failed: %v\n", err)
			os.Exit(1)
		}

		// 初始化极简日志
		err = initMiniLogger()
		if err != nil {
			logger.Fatal("init mini logger failed" + err.Error())
		}

		logger = zap.L()
	})

	MiniLogger.Info("[ OK ] log module initialized")
}

// GetLogger 获取全局的logger
func GetLogger() *zap.Logger {
	return logger
}

// initLogger 初始化全局日志
// debug 模式输出带颜色的控制台日志，级别为 Debug
// 生产模式输出 JSON 日志到控制台和文件，级别为 Info
func initLogger(debug bool, logFilePath string) error {
	var consoleCore zapcore.Core

	if debug {
		// 开发环境使用带颜色的控制台编码器
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = "T"
		encoderConfig.CallerKey = "C"
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeCaller = zapcore.FullCallerEncoder

		consoleCore = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			zapcore.DebugLevel,
		)
	} else {
		// 生产环境控制台输出 JSON，仅 Info 及以上
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

		consoleCore = zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			zapcore.InfoLevel,
		)
	}

	// 文件输出始终为 JSON，便于事后排查批量运行记录
	file, err := os.Create(logFilePath)
	if err != nil {
		fmt.Printf("create log file failed: %v\n", err)
		return err
	}

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	fileEncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderConfig),
		zapcore.AddSync(file),
		zapcore.InfoLevel,
	)

	// 控制台和文件两个 Core 合并
	core := zapcore.NewTee(consoleCore, fileCore)

	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))

	return nil
}

func initMiniLogger() error {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "msg", // 保留 msg
		EncodeTime:   nil,   // 不显示时间
		EncodeLevel:  nil,   // 不显示 level
		EncodeCaller: nil,   // 不显示 caller
	}

	// 使用 console 输出（非 JSON）
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		zapcore.InfoLevel,
	)

	MiniLogger = zap.New(core)

	return nil
}
