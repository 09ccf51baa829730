package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"go4.org/netipx"

	"neoport/internal/core/model"
)

// MaxHosts 单次展开的主机数上限 (/12 IPv4)
const MaxHosts = 1 << 20

// ErrInvalidTarget 目标格式错误
var ErrInvalidTarget = errors.New("invalid target")

type expandOptions struct {
	allowFiles bool
}

// ExpandOption 控制 ExpandTargets 的行为
type ExpandOption func(*expandOptions)

// WithTargetFiles 允许把输入当作目标文件路径读取
// 只应在 CLI 中开启，HTTP 等远程入口不能让调用方指定服务器上的文件
func WithTargetFiles() ExpandOption {
	return func(o *expandOptions) { o.allowFiles = true }
}

// ExpandTargets 将用户输入 (List, CIDR, Range, IP, Domain，开启 WithTargetFiles 时还有 File) 展开为主机列表
// 主机按首次出现的顺序去重；域名原样保留，由拨号时解析
func ExpandTargets(input string, opts ...ExpandOption) ([]string, error) {
	var o expandOptions
	for _, opt := range opts {
		opt(&o)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}

	e := &expander{seen: make(map[string]struct{})}

	if o.allowFiles && isRegularFile(input) {
		// 文件: 每行一个条目，行内也允许逗号分隔
		if err := e.addFile(input); err != nil {
			return nil, err
		}
		if len(e.hosts) == 0 {
			return nil, fmt.Errorf("%w: no hosts in file %s", ErrInvalidTarget, input)
		}
		return e.hosts, nil
	}

	for _, part := range strings.Split(input, ",") {
		if err := e.add(part); err != nil {
			return nil, err
		}
	}
	if len(e.hosts) == 0 {
		return nil, fmt.Errorf("%w: no hosts in %q", ErrInvalidTarget, input)
	}
	return e.hosts, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// BuildTargets 主机与端口的笛卡尔积，主机优先、端口升序
func BuildTargets(hosts []string, ports []int) []model.ScanTarget {
	targets := make([]model.ScanTarget, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		for _, p := range ports {
			targets = append(targets, model.ScanTarget{Host: h, Port: p})
		}
	}
	return targets
}

type expander struct {
	hosts []string
	seen  map[string]struct{}
}

func (e *expander) addFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open target file: %w", err)
	}
	defer file.Close()

	// 错误只报告行号，不回显文件内容
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			if err := e.add(part); err != nil {
				return fmt.Errorf("%w: %s:line %d", ErrInvalidTarget, path, lineNo)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read target file: %w", err)
	}
	return nil
}

func (e *expander) add(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	// 1. CIDR (e.g., 192.168.1.0/24)
	if strings.Contains(target, "/") {
		prefix, err := netip.ParsePrefix(target)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTarget, target, err)
		}
		return e.addPrefix(prefix.Masked())
	}

	// 2. IP Range (e.g., 192.168.1.1-192.168.1.10)
	if strings.Contains(target, "-") {
		if r, err := netipx.ParseIPRange(target); err == nil {
			return e.addRange(r)
		}
	}

	// 3. Single IP
	if addr, err := netip.ParseAddr(target); err == nil {
		return e.push(addr.String())
	}

	// 4. Domain
	if isHostname(target) {
		return e.push(strings.ToLower(target))
	}

	return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
}

// addPrefix 只展开可用主机地址:
// IPv4 去掉网络地址和广播地址 (/31、/32 除外)，IPv6 去掉子网路由器任播地址 (/127、/128 除外)
func (e *expander) addPrefix(p netip.Prefix) error {
	hostBits := p.Addr().BitLen() - p.Bits()
	if hostBits > 20 {
		return fmt.Errorf("%w: %s expands to more than %d hosts", ErrInvalidTarget, p, MaxHosts)
	}

	first := p.Addr()
	last := netipx.PrefixLastIP(p)
	if hostBits >= 2 {
		first = first.Next()
		if p.Addr().Is4() {
			last = last.Prev()
		}
	}
	return e.addRange(netipx.IPRangeFrom(first, last))
}

func (e *expander) addRange(r netipx.IPRange) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: invalid range %s", ErrInvalidTarget, r)
	}
	for ip := r.From(); ip.IsValid() && ip.Compare(r.To()) <= 0; ip = ip.Next() {
		if err := e.push(ip.String()); err != nil {
			return err
		}
	}
	return nil
}

func (e *expander) push(host string) error {
	if _, ok := e.seen[host]; ok {
		return nil
	}
	if len(e.hosts) >= MaxHosts {
		return fmt.Errorf("%w: more than %d hosts", ErrInvalidTarget, MaxHosts)
	}
	e.seen[host] = struct{}{}
	e.hosts = append(e.hosts, host)
	return nil
}

// isHostname RFC 1123 主机名校验
func isHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return false
	}
	labels := strings.Split(s, ".")
	// 顶级域不能是纯数字，避免把畸形 IP 当作主机名
	if isNumeric(labels[len(labels)-1]) {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return false
			}
		}
	}
	return true
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
