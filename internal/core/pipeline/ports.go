package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// ErrInvalidPortSpec 端口描述格式错误
var ErrInvalidPortSpec = errors.New("invalid port spec")

// ParsePorts 解析端口描述，返回升序去重后的端口列表
// 支持: "22" / "22,80,443" / "1-1024" / "22,80,8000-8100"
func ParsePorts(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPortSpec)
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("%w: empty token in %q", ErrInvalidPortSpec, spec)
		}

		start, end, err := parsePortToken(token)
		if err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports, nil
}

// parsePortToken 单个端口或闭区间
func parsePortToken(token string) (int, int, error) {
	if !strings.Contains(token, "-") {
		p, err := parsePort(token)
		if err != nil {
			return 0, 0, err
		}
		return p, p, nil
	}

	bounds := strings.SplitN(token, "-", 2)
	start, err := parsePort(bounds[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parsePort(bounds[1])
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: range start greater than end: %q", ErrInvalidPortSpec, token)
	}
	return start, end, nil
}

func parsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPortSpec, s)
	}
	if p < MinPort || p > MaxPort {
		return 0, fmt.Errorf("%w: port %d out of range %d-%d", ErrInvalidPortSpec, p, MinPort, MaxPort)
	}
	return p, nil
}
