
package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kmcsr/go-logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kmcsr/go-jsbridge"
	"github.com/kmcsr/go-jsbridge/hostlink"
	"github.com/kmcsr/go-jsbridge/native"
	"github.com/kmcsr/go-jsbridge/native/sim"
)

func main(){
	if err := buildRootCmd().Execute(); err != nil {
		loger.Errorf("%v", err)
		os.Exit(1)
	}
}

func buildRootCmd()(*cobra.Command){
	root := &cobra.Command{
		Use: "jsbridge",
		Short: "Run JavaScript apps against native device components",
		SilenceUsage: true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", debug, "enable debug messages")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string){
		if debug {
			loger.SetLevel(logger.TraceLevel)
		}
	}
	root.AddCommand(buildRunCmd(), buildHostCmd())
	return root
}

type runFlags struct{
	config  string
	host    string
	token   string
	metrics string
	watch   bool
}

func buildRunCmd()(*cobra.Command){
	var flags runFlags
	cmd := &cobra.Command{
		Use: "run <script>",
		Short: "Load a script and keep it running until interrupted",
		Example: "  jsbridge run app.js\n  jsbridge run --watch --host 127.0.0.1:7560 app.js",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string)(error){
			return runApp(cmd.Context(), args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "config file (.yaml, .toml or .json)")
	cmd.Flags().StringVar(&flags.host, "host", "", "address of a device host, overrides host.addr")
	cmd.Flags().StringVar(&flags.token, "token", "", "device host token, overrides host.token")
	cmd.Flags().StringVar(&flags.metrics, "metrics", "", "address to serve /metrics on, overrides metrics.addr")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "reload the script when it changes")
	return cmd
}

func runApp(ctx context.Context, script string, flags runFlags)(err error){
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := jsbridge.DefaultConfig()
	if flags.config != "" {
		if cfg, err = jsbridge.LoadConfig(flags.config); err != nil {
			return
		}
	}
	if flags.host != "" {
		cfg.Host.Addr = flags.host
	}
	if flags.token != "" {
		cfg.Host.Token = flags.token
	}
	if flags.metrics != "" {
		cfg.Metrics.Addr = flags.metrics
	}
	if !debug {
		lvl, _ := jsbridge.ParseLevel(cfg.LogLevel)
		loger.SetLevel(lvl)
	}

	var platform native.Platform
	if cfg.Host.Addr != "" {
		var remote *hostlink.Remote
		if remote, err = hostlink.DialWith(ctx, cfg.Host.Addr, &hostlink.DialConfig{
			Token: ([]byte)(cfg.Host.Token),
			Logger: loger,
		}); err != nil {
			return
		}
		defer remote.Close()
		platform = remote
		loger.Infof("Connected to device host %s", cfg.Host.Addr)
	}else{
		p := sim.New()
		p.Motion().SetAutoTick(true)
		platform = p
		loger.Infof("Running on the simulated platform")
	}

	var opts []jsbridge.BridgeOption
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		var metrics *jsbridge.Metrics
		if metrics, err = jsbridge.NewMetrics(reg); err != nil {
			return
		}
		opts = append(opts, jsbridge.WithObserver(metrics))
		go func(){
			if err := jsbridge.ServeMetrics(ctx, cfg.Metrics.Addr, reg); err != nil {
				loger.Errorf("Metrics server: %v", err)
			}
		}()
		loger.Infof("Serving metrics at http://%s/metrics", cfg.Metrics.Addr)
	}

	bridge, err := jsbridge.NewBridge(platform, cfg, opts...)
	if err != nil {
		return
	}
	if err = bridge.Start(); err != nil {
		return
	}
	defer bridge.Stop()

	if flags.watch {
		return jsbridge.WatchApp(ctx, bridge, script, nil)
	}

	app, err := bridge.LoadAppFile(ctx, script)
	if err != nil {
		return
	}
	if err = app.Load(ctx); err != nil {
		return
	}
	<-ctx.Done()
	uctx, cancel := context.WithTimeout(context.Background(), 3 * time.Second)
	defer cancel()
	return app.Unload(uctx)
}

func buildHostCmd()(*cobra.Command){
	var addr, token string
	cmd := &cobra.Command{
		Use: "host",
		Short: "Serve a simulated device over hostlink and read commands from stdin",
		Long: "Serve a simulated device over hostlink and read commands from stdin.\nCommands:\n" + cliCommandsUsage,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string)(err error){
			p := sim.New()
			p.Motion().SetAutoTick(true)
			host := hostlink.NewHost(addr, p, loger)
			if token != "" {
				host.Token = ([]byte)(token)
			}
			if err = host.Listen(); err != nil {
				return
			}
			defer host.Shutdown()
			loger.Infof("Device host listening at %s", host.ListenAddr())
			go func(){
				if err := host.Serve(); err != nil {
					loger.Errorf("Host stopped: %v", err)
				}
			}()
			return repl(TextCommander{initCommands(p)}, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:7560", "listening address")
	cmd.Flags().StringVar(&token, "token", "", "require engines to prove this token")
	return cmd
}

func repl(commander TextCommander, r io.Reader, w io.Writer)(err error){
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, fields := fields[0], fields[1:]
		res, err := commander.Execute(cmd, fields...)
		if err != nil {
			res = err.Error() + "\n"
		}
		if _, err = io.WriteString(w, res); err != nil {
			return err
		}
	}
	return scanner.Err()
}
