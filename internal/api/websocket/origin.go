package websocket

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy 浏览器来源校验
//
// 仅监听本机地址时不限制来源；否则只接受无 Origin 的客户端、
// 与请求 Host 相同的来源以及配置中列出的来源。
type OriginPolicy struct {
	AllowAll bool
	Allowed  []string // scheme://host[:port]
}

// NewOriginPolicy 按监听地址生成来源策略
func NewOriginPolicy(listenHost string, allowed []string) OriginPolicy {
	return OriginPolicy{AllowAll: isLoopbackHost(listenHost), Allowed: allowed}
}

// Check 实现 websocket.Upgrader.CheckOrigin
func (p OriginPolicy) Check(r *http.Request) bool {
	if p.AllowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, a := range p.Allowed {
		if strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
