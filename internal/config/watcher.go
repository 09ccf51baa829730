package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce 编辑器保存时往往连续产生多个事件，静默这段时间后才重载
const reloadDebounce = 500 * time.Millisecond

// ConfigChangeCallback 配置变更回调，返回错误时新配置不会生效
type ConfigChangeCallback func(oldConfig, newConfig *Config) error

// ConfigWatcher 配置热重载
//
// 监听的是配置文件所在目录而非文件本身：vim 等编辑器以 rename 方式保存，
// 直接监听文件会在第一次保存后失效。
type ConfigWatcher struct {
	path    string
	current atomic.Pointer[Config]
	fsw     *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []ConfigChangeCallback
	onError   func(error)

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewConfigWatcher 创建监听器，initial 为当前已生效的配置
func NewConfigWatcher(configFile string, initial *Config) (*ConfigWatcher, error) {
	if configFile == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		path:    filepath.Clean(configFile),
		fsw:     fsw,
		onError: func(error) {},
		done:    make(chan struct{}),
	}
	cw.current.Store(initial)
	return cw, nil
}

// SetErrorHandler 设置后台重载失败时的回调
func (cw *ConfigWatcher) SetErrorHandler(fn func(error)) {
	if fn == nil {
		return
	}
	cw.mu.Lock()
	cw.onError = fn
	cw.mu.Unlock()
}

// AddCallback 注册配置变更回调，按注册顺序调用
func (cw *ConfigWatcher) AddCallback(callback ConfigChangeCallback) {
	cw.mu.Lock()
	cw.callbacks = append(cw.callbacks, callback)
	cw.mu.Unlock()
}

// GetConfig 返回最近一次成功加载的配置
func (cw *ConfigWatcher) GetConfig() *Config {
	return cw.current.Load()
}

// Start 开始监听
func (cw *ConfigWatcher) Start() error {
	dir := filepath.Dir(cw.path)
	if err := cw.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config dir %s: %w", dir, err)
	}
	cw.wg.Add(1)
	go cw.loop()
	return nil
}

// Stop 停止监听并等待后台协程退出，可重复调用
func (cw *ConfigWatcher) Stop() error {
	var err error
	cw.once.Do(func() {
		close(cw.done)
		err = cw.fsw.Close()
		cw.wg.Wait()
	})
	return err
}

func (cw *ConfigWatcher) loop() {
	defer cw.wg.Done()

	// 防抖定时器，未触发时 pending 为 nil
	var (
		debounce *time.Timer
		pending  <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-cw.done:
			return
		case ev, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			pending = debounce.C
		case <-pending:
			pending = nil
			if err := cw.reload(); err != nil {
				cw.report(err)
			}
		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			cw.report(fmt.Errorf("config watcher error: %w", err))
		}
	}
}

func (cw *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != cw.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (cw *ConfigWatcher) reload() error {
	next, err := LoadConfigFromFile(cw.path)
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}

	cw.mu.Lock()
	callbacks := append([]ConfigChangeCallback(nil), cw.callbacks...)
	cw.mu.Unlock()

	prev := cw.current.Load()
	for _, cb := range callbacks {
		if err := cb(prev, next); err != nil {
			return fmt.Errorf("config change callback failed: %w", err)
		}
	}
	cw.current.Store(next)
	return nil
}

func (cw *ConfigWatcher) report(err error) {
	cw.mu.Lock()
	fn := cw.onError
	cw.mu.Unlock()
	fn(err)
}

// WatchConfig 创建并启动监听器
func WatchConfig(configFile string, initial *Config, callback ConfigChangeCallback) (*ConfigWatcher, error) {
	cw, err := NewConfigWatcher(configFile, initial)
	if err != nil {
		return nil, err
	}
	if callback != nil {
		cw.AddCallback(callback)
	}
	if err := cw.Start(); err != nil {
		_ = cw.Stop()
		return nil, err
	}
	return cw, nil
}
