package record

import (
	"github.com/laixingyu123/ay4/cmn"

	"go.uber.org/zap"
)

var z *zap.Logger

func Init() {
	z = cmn.GetLogger()

	cmn.MiniLogger.Info("[ OK ] record module initialized")
}
