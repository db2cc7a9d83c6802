package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint 一个已发现的后端实例
// 同一快照内由 地址:端口 唯一标识
type Endpoint struct {
	Node       string
	Address    string
	Port       int
	Tags       []string
	Meta       map[string]string
	Datacenter string
}

// Addr 返回 host:port 形式的连接地址
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

// String 返回端点的可读描述
func (e Endpoint) String() string {
	if e.Node == "" {
		return e.Addr()
	}
	return fmt.Sprintf("%s(%s)", e.Node, e.Addr())
}

// ParseNodeMeta 解析 key:value 形式的节点元数据过滤项
// 值中允许出现冒号，仅按第一个冒号切分
func ParseNodeMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, ":")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q is not key:value", ErrInvalidNodeMeta, pair)
		}
		meta[key] = value
	}
	return meta, nil
}
