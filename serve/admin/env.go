package admin

import (
	"fmt"
	"net/http"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/gorilla/sessions"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	adminSessionKey = "admin-session" // 管理员session的cookie名称
)

var (
	sessionStore *sessions.CookieStore

	adminUsername string // 管理员用户名
	adminPassword string // 管理员密码
)

var z *zap.Logger

func Init() {
	z = cmn.GetLogger()

	err := initSessionStore()
	if err != nil {
		z.Fatal("[ FAIL ] failed to initialize session store", zap.Error(err))
	}

	adminUsername = viper.GetString("admin.username")
	if adminUsername == "" {
		z.Fatal("[ FAIL ] admin.username is empty")
	}
	adminPassword = viper.GetString("admin.password")
	if adminPassword == "" {
		z.Fatal("[ FAIL ] admin.password is empty")
	}

	cmn.MiniLogger.Info("[ OK ] admin module initialized")
}

func initSessionStore() error {
	authKeyStr := viper.GetString("session.authKey")
	if authKeyStr == "" {
		return fmt.Errorf("gorilla session store key is empty")
	}
	encryptionKeyStr := viper.GetString("session.encryptionKey")
	if encryptionKeyStr == "" {
		return fmt.Errorf("gorilla session store encryption key is empty")
	}

	authKey := []byte(authKeyStr)
	encryptionKey := []byte(encryptionKeyStr)

	// 创建session store，配置需要与handler中保持一致
	sessionStore = sessions.NewCookieStore(authKey, encryptionKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7天
		HttpOnly: true,
		Secure:   false, // 开发环境设为false，生产环境应设为true
		SameSite: http.SameSiteLaxMode,
	}

	return nil
}
