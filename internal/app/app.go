package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/purchaser/internal/core/manager/service"
	"github.com/weisyn/purchaser/pkg/interfaces/config"
)

// stopTimeout 停止应用的超时，给 BadgerDB 留出同步时间
const stopTimeout = 30 * time.Second

// App 是控制面应用的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait() error

	// Service 控制面服务
	Service() *service.Service
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
	service   *service.Service
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待退出信号
func (a *internalApp) Wait() error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case <-signals:
	case <-a.bootstrap.fxApp.Done():
	}
	return a.Stop()
}

// Service 控制面服务
func (a *internalApp) Service() *service.Service {
	return a.service
}

// provideAppOptions 把已加载的选项交给 config 模块
func provideAppOptions(opts *options) func() config.AppOptions {
	return func() config.AppOptions { return opts }
}

// Start 加载配置、组装模块并启动应用
func Start(ctx context.Context, appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)
	if err := opts.load(); err != nil {
		return nil, err
	}

	b := NewBootstrap(opts)
	var svc *service.Service
	if err := b.CreateFxApp(fx.Populate(&svc)); err != nil {
		return nil, err
	}
	if err := b.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: b, service: svc}, nil
}

// Exec 启动不含 API 与转发器的应用，执行 fn 后停止
// 供 init、exec、query 等一次性命令使用
func Exec(ctx context.Context, fn func(ctx context.Context, svc *service.Service) error, appOptions ...Option) error {
	appOptions = append(appOptions, WithoutAPI(), WithoutRelay())
	a, err := Start(ctx, appOptions...)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a.Service())
	if err := a.Stop(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// load 读取配置文件并应用覆盖项
func (o *options) load() error {
	appConfig, err := LoadConfig(ResolveConfigPath(o.configFilePath), o.embeddedConfig)
	if err != nil {
		return err
	}
	for _, fn := range o.overrides {
		fn(appConfig)
	}
	if err := createDataDirectories(appConfig); err != nil {
		return err
	}
	o.appConfig = appConfig
	return nil
}
