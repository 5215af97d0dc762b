package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/aptname/internal/channel"
	"github.com/stellarlinkco/aptname/internal/config"
	"github.com/stellarlinkco/aptname/internal/dataset"
	"github.com/stellarlinkco/aptname/internal/gateway"
	"github.com/stellarlinkco/aptname/internal/requirement"
)

// PlayOptions for running a terminal game with custom IO
type PlayOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "aptname",
	Short: "aptname - 아파트 이름 짓기",
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one game in the terminal",
	RunE:  runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over the configured channels (webui, telegram)",
	RunE:  runServe,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the requirements in the order they are introduced",
	RunE:  runRules,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and a sample data pack",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aptname status",
	RunE:  runStatus,
}

var (
	seedFlag    int64
	verboseFlag bool
)

func init() {
	playCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for a reproducible game")
	playCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show logs while playing")
	rootCmd.AddCommand(playCmd, serveCmd, rulesCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	return runPlayWithOptions(PlayOptions{})
}

// runPlayWithOptions plays until the input ends or the player types /quit.
func runPlayWithOptions(opts PlayOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if seedFlag != 0 {
		cfg.Game.Seed = seedFlag
	}
	// the terminal is the only player
	cfg.Channels = config.ChannelsConfig{}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if !verboseFlag {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	gw, err := gateway.NewWithOptions(cfg, gateway.Options{ExitWhenIdle: true})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	gw.Register(channel.NewTerminalChannel(stdin, stdout, gw.Bus()))

	fmt.Fprintln(stdout, "aptname play: 새 이름을 입력하세요. /key Q, /reset, /new, /show, /quit")
	return gw.Run(context.Background())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Channels.WebUI.Enabled && !cfg.Channels.Telegram.Enabled {
		return fmt.Errorf("no channel enabled. Run 'aptname onboard' and enable webui or telegram in %s", config.ConfigPath())
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	data, err := dataset.Default()
	if err != nil {
		return err
	}
	pack, err := dataset.LoadPack(cfg.PackPath())
	if err != nil {
		return err
	}
	data = data.Apply(pack)

	for i, m := range data.Requirements {
		mark := " "
		if !requirement.Implemented(m.Code) {
			mark = "?"
		}
		fmt.Printf("%2d %s %-18s %s\n", i+1, mark, m.Code, m.ProfileName)
		fmt.Printf("       %s\n", strings.ReplaceAll(m.Message, "\n", "\n       "))
	}
	fmt.Println("\n? = not implemented, satisfied automatically")
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	writeIfNotExists(filepath.Join(cfgDir, config.DefaultPackFile+".example"), samplePack)

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'aptname play' to play in the terminal")
	fmt.Printf("  2. Or run 'aptname serve' and open http://localhost:%d\n", config.DefaultPort)
	fmt.Printf("  3. Copy %s.example to %s to change the rules\n", config.DefaultPackFile, config.DefaultPackFile)

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	if cfg.Game.Seed != 0 {
		fmt.Printf("Seed: %d\n", cfg.Game.Seed)
	} else {
		fmt.Println("Seed: random")
	}

	packPath := cfg.PackPath()
	pack, err := dataset.LoadPack(packPath)
	switch {
	case err != nil:
		fmt.Printf("Pack: %s (error: %v)\n", packPath, err)
	case pack == nil:
		fmt.Println("Pack: none (built-in data)")
	default:
		fmt.Printf("Pack: %s (%d requirements)\n", packPath, len(pack.Requirements))
	}

	fmt.Printf("Max sessions: %d\n", cfg.Game.MaxSessions)
	fmt.Printf("WebUI: enabled=%v (%s:%d)\n", cfg.Channels.WebUI.Enabled, cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	if token := cfg.Channels.Telegram.Token; token != "" && len(token) > 8 {
		fmt.Printf("Telegram Token: %s...%s\n", token[:4], token[len(token)-4:])
	} else if token != "" {
		fmt.Println("Telegram Token: set")
	} else {
		fmt.Println("Telegram Token: not set")
	}

	return nil
}

func writeIfNotExists(path, content string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = os.WriteFile(path, []byte(content), 0644)
		fmt.Printf("  Created: %s\n", path)
	}
}

const samplePack = `# aptname data pack. Non-empty sections replace the built-in data.
#
# requirements:
#   - code: REMOVE_JUGONG
#     message: 요즘 누가 주공아파트에 살아요~ 이름에서 **주공**은 빼 주세요.
#     profileName: 부녀회장
#     profileImage: chairwoman.png
#   - code: ENGLISH
#     message: "**{0}**{0|을|를} 넣어 주세요."
#     profileName: 동대표
#
pools:
  englishWords: [Palace, Castle, Royal, Central, Park]
`
