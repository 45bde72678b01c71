package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/any-hub/remote-view/internal/cache"
	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/finder"
	"github.com/any-hub/remote-view/internal/logging"
	"github.com/any-hub/remote-view/internal/modifier"
	"github.com/any-hub/remote-view/internal/remote"
	"github.com/any-hub/remote-view/internal/server"
	"github.com/any-hub/remote-view/internal/server/routes"
	"github.com/any-hub/remote-view/internal/version"
	"github.com/any-hub/remote-view/internal/warmup"
)

const (
	commandServe   = "serve"
	commandWarmup  = "warmup"
	commandResolve = "resolve"

	configEnv = "REMOTE_VIEW_CONFIG"

	shutdownTimeout = 10 * time.Second
)

// signalContext 在收到 SIGINT/SIGTERM 时取消，三个子命令共用；测试可替换为手动取消的 context。
var signalContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	command     string
	identifier  string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute 解析参数并执行对应子命令，返回退出码。
func execute(args []string) int {
	exitCode := 0
	cmd := newRootCommand(func(opts cliOptions) error {
		exitCode = run(opts)
		return nil
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stdErr, "解析参数失败: %v\n", err)
		return 2
	}
	return exitCode
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	var parsed cliOptions
	cmd := newRootCommand(func(opts cliOptions) error {
		parsed = opts
		return nil
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	return parsed, nil
}

// newRootCommand 构建命令树；不带子命令时等价于 serve。
func newRootCommand(handle func(cliOptions) error) *cobra.Command {
	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	options := func(command string, args []string) cliOptions {
		path := os.Getenv(configEnv)
		if configFlag != "" {
			path = configFlag
		}
		if path == "" {
			path = "config.toml"
		}
		opts := cliOptions{
			configPath:  path,
			checkOnly:   checkOnly,
			showVersion: showVer,
			command:     command,
		}
		if len(args) > 0 {
			opts.identifier = args[0]
		}
		return opts
	}

	root := &cobra.Command{
		Use:           "remote-view",
		Short:         "Resolve remote template identifiers into local cache files",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handle(options(commandServe, args))
		},
	}
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	root.PersistentFlags().StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 "+configEnv+" 覆盖）")
	root.PersistentFlags().BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	root.Flags().BoolVar(&showVer, "version", false, "显示版本信息")

	root.AddCommand(
		&cobra.Command{
			Use:   commandServe,
			Short: "Start the resolve/diagnostics HTTP service",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return handle(options(commandServe, args))
			},
		},
		&cobra.Command{
			Use:   commandWarmup,
			Short: "Fetch every mapped template of every host",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return handle(options(commandWarmup, args))
			},
		},
		&cobra.Command{
			Use:   commandResolve + " <identifier>",
			Short: "Resolve a single view name and print its local path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return handle(options(commandResolve, args))
			},
		},
	)
	return root
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["hosts"] = len(cfg.Hosts)
		fields["cache_modes"] = config.CacheModes(cfg)
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 修饰链 → 磁盘缓存 → 上游客户端 → Engine，
	// 保证所有入口共享同一个 Engine 实例。
	engine, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建解析引擎失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields(opts.command, opts.configPath)
	fields["hosts"] = len(cfg.Hosts)
	fields["cache_modes"] = config.CacheModes(cfg)
	fields["view_folder"] = cfg.Global.ViewFolder
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	ctx, stop := signalContext()
	defer stop()

	views := finder.New(engine, nil, cfg.Global.ViewPaths, cfg.Global.ViewExtensions)

	switch opts.command {
	case commandResolve:
		return runResolve(ctx, views, opts.identifier)
	case commandWarmup:
		return runWarmup(ctx, cfg, engine, views, logger)
	default:
		if err := startHTTPServer(ctx, cfg, engine, logger); err != nil {
			fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
			return 1
		}
		return 0
	}
}

func buildEngine(cfg *config.Config, logger *logrus.Logger) (*remote.Engine, error) {
	modifiers, err := modifier.Build(cfg.Modifiers)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(nil, cfg.Global.ViewFolder)
	if err != nil {
		return nil, err
	}

	return remote.New(cfg,
		remote.WithStore(store),
		remote.WithHTTPClient(remote.NewUpstreamClient(cfg)),
		remote.WithURLModifiers(modifiers...),
		remote.WithLogger(logger),
	)
}

func runResolve(ctx context.Context, views *finder.Finder, identifier string) int {
	path, err := views.Find(ctx, identifier)
	if err != nil {
		fmt.Fprintf(stdErr, "解析失败: %v\n", err)
		var fetchErr *remote.RemoteFetchError
		if errors.As(err, &fetchErr) {
			fmt.Fprintf(stdErr, "上游地址: %s\n", fetchErr.URL)
		}
		return 1
	}
	fmt.Fprintln(stdOut, path)
	return 0
}

func runWarmup(ctx context.Context, cfg *config.Config, engine *remote.Engine, views *finder.Finder, logger *logrus.Logger) int {
	targets := warmup.Targets(engine.Hosts().List(), engine.Parser())
	report := warmup.New(views, cfg.Global.WarmupConcurrency, logger).Run(ctx, targets)

	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(stdErr, "%s::%s 预热失败: %v\n", res.Namespace, res.Name, res.Err)
			continue
		}
		fmt.Fprintln(stdOut, res.Path)
	}
	if report.Failed() > 0 {
		return 1
	}
	return 0
}

// startHTTPServer 阻塞直到 ctx 被取消；取消后停止接收新连接，最多等待 shutdownTimeout 处理中的请求。
func startHTTPServer(ctx context.Context, cfg *config.Config, engine *remote.Engine, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Resolver:   engine,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterHostRoutes(app, engine)
	server.RegisterFallback(app, logger)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	err = app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{
		GracefulContext: ctx,
		ShutdownTimeout: shutdownTimeout,
	})
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"action": "shutdown",
		"port":   port,
	}).Info("Fiber 服务已停止")
	return nil
}
