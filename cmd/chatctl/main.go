// Package main chatctl 本地调试工具：查看语料、意图分类、离线问答、签发调试令牌
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/pkg/logger"
)

var (
	configDir string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "chatctl",
	Short:         "Inspect and exercise the portfolio chat backend from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 日志写 stderr，stdout 只输出结果
		logger.InitWithWriter(os.Stderr, logLevel, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (defaults to $CONFIG_DIR or ./configs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(passagesCmd, classifyCmd, askCmd, tokenCmd)
}

// loadConfig 按 --config-dir 或默认位置加载配置
func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
