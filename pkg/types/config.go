package types

// AppConfig 应用配置文件结构
//
// 🔧 零值陷阱处理说明：
// 字段使用指针类型以区分"用户未设置"和"用户设置为零值"：
// - nil: 用户未在配置文件中设置该字段，使用系统默认值
// - &value: 用户明确设置了该值，即使是零值也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 控制面配置（合约变体、所有者、地址前缀）
	Manager *UserManagerConfig `json:"manager,omitempty"`

	// 中继投递配置
	Relay *UserRelayConfig `json:"relay,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot   *string `json:"data_root,omitempty"`   // 数据根目录（data_root）
	InMemory   *bool   `json:"in_memory,omitempty"`   // 是否使用内存数据库（测试/演示）
	SyncWrites *bool   `json:"sync_writes,omitempty"` // 是否同步写入

	QueryCache    *bool   `json:"query_cache,omitempty"`     // 是否启用链路由查询缓存
	QueryCacheTTL *string `json:"query_cache_ttl,omitempty"` // 查询缓存存活时间（time.ParseDuration 格式）
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认true）
	HTTPHost    *string `json:"http_host,omitempty"`    // HTTP监听地址
	HTTPPort    *int    `json:"http_port,omitempty"`    // HTTP监听端口

	WriteRateLimit *int  `json:"write_rate_limit,omitempty"` // 命令接口每IP每秒请求数
	EnableMetrics  *bool `json:"enable_metrics,omitempty"`   // 是否暴露 /metrics
	EnableEvents   *bool `json:"enable_events,omitempty"`    // 是否提供 WebSocket 消息推送

	RequireSignature *bool    `json:"require_signature,omitempty"`  // 命令请求是否必须签名（默认true）
	SignatureMaxSkew *string  `json:"signature_max_skew,omitempty"` // 签名时间戳允许偏差（time.ParseDuration 格式）
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`    // 非本机监听时允许的 WebSocket 来源
}

// UserManagerConfig 用户控制面配置
type UserManagerConfig struct {
	Variant           *string  `json:"variant,omitempty"`             // manager | collector
	Bech32Prefix      *string  `json:"bech32_prefix,omitempty"`       // 账户地址前缀
	Owners            []string `json:"owners,omitempty"`              // 初始所有者
	RetryDelay        *uint64  `json:"retry_delay,omitempty"`         // 初始重试间隔
	PusdDenomTemplate *string  `json:"pusd_denom_template,omitempty"` // 提现代币 denom 模板，%s 为管理合约地址
}

// UserRelayConfig 用户中继配置
type UserRelayConfig struct {
	Enabled      *bool   `json:"enabled,omitempty"`       // 是否启用 outbox 转发
	RedisAddr    *string `json:"redis_addr,omitempty"`    // Redis 地址
	RedisDB      *int    `json:"redis_db,omitempty"`      // Redis DB 编号
	QueueKey     *string `json:"queue_key,omitempty"`     // 任务队列键
	PollInterval *string `json:"poll_interval,omitempty"` // 轮询间隔（time.ParseDuration 格式）
}

// StringPtr 返回字符串指针，便于构造用户配置
func StringPtr(s string) *string { return &s }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }

// Uint64Ptr 返回 uint64 指针
func Uint64Ptr(u uint64) *uint64 { return &u }
