/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/laixingyu123/ay4/cmn"
	"github.com/laixingyu123/ay4/cmn/browser_core"
	"github.com/laixingyu123/ay4/cmn/gateway_core"
	"github.com/laixingyu123/ay4/cmn/keyprobe"
	"github.com/laixingyu123/ay4/cmn/notify_core"
	"github.com/laixingyu123/ay4/cmn/shop_core"
	"github.com/laixingyu123/ay4/serve/keeper"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one maintenance batch and exit",
	Long: `The run command executes one maintenance batch over all accounts in the
configuration file, prints the batch summary as JSON and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("run called")

		// 初始化地基模块（顺序不能改变）
		cmn.InitLogger(debug)
		cmn.InitConfig()
		cmn.InitDB()
		logger := cmn.GetLogger()

		// 初始化公共模块
		browser_core.Init()
		gateway_core.Init()
		shop_core.Init()
		keyprobe.Init()
		notify_core.Init()

		// 初始化服务模块
		keeper.Init()

		cmn.MiniLogger.Info("[ YES ] all modules initialed", zap.String("version", cmn.Version))

		summary, err := keeper.TryRunBatch("cli", keeper.Accounts())
		if err != nil {
			logger.Error("batch run failed", zap.Error(err))
			return
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			logger.Error("failed to marshal batch summary", zap.Error(err))
			return
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
