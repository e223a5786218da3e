package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shellmind-ai/shellmind/internal/prefs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit sticky run preferences (mode, confirmation)",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	p := prefs.Load(cwd)

	fmt.Printf("当前配置：\n  mode: %s\n  agent_mode_type: %s\n  require_confirm: %t\n\n", p.Mode, p.AgentModeType, p.RequireConfirm)
	fmt.Println("1) 切换模式 (chat/agent/complete)")
	fmt.Println("2) 切换交互类型 (auto/interactive)")
	fmt.Println("3) 切换命令确认开关")
	fmt.Println("q) 退出")

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		choice := strings.TrimSpace(reader.Text())
		switch choice {
		case "1":
			fmt.Print("新模式 (chat/agent/complete): ")
			if reader.Scan() {
				p.Mode = strings.TrimSpace(reader.Text())
			}
		case "2":
			if p.AgentModeType == "auto" {
				p.AgentModeType = "interactive"
			} else {
				p.AgentModeType = "auto"
			}
		case "3":
			p.RequireConfirm = !p.RequireConfirm
		case "q", "quit", "exit":
			return prefs.Save(cwd, p)
		default:
			fmt.Println("无效选择")
			continue
		}
		if err := prefs.Save(cwd, p); err != nil {
			return err
		}
		fmt.Printf("已保存：mode=%s agent_mode_type=%s require_confirm=%t\n", p.Mode, p.AgentModeType, p.RequireConfirm)
	}
	return nil
}
