package monitor

import (
	"sort"
	"sync"
	"time"
)

// HealthStatus 数据源健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// Monitor 数据源健康监控
// 每次数据源调用后由调用方上报结果
type Monitor struct {
	components map[string]*HealthStatus
	mutex      sync.RWMutex
}

// NewMonitor 创建新的监控器
func NewMonitor() *Monitor {
	return &Monitor{
		components: make(map[string]*HealthStatus),
	}
}

// RegisterComponent 注册组件
func (m *Monitor) RegisterComponent(component string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      "unknown",
		LastChecked: time.Now(),
	}
}

// UpdateStatus 更新组件状态
func (m *Monitor) UpdateStatus(component, status, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.components[component]; !exists {
		m.components[component] = &HealthStatus{
			Component: component,
		}
	}

	m.components[component].Status = status
	m.components[component].LastChecked = time.Now()
	m.components[component].Message = message
}

// GetStatus 获取单个组件状态
func (m *Monitor) GetStatus(component string) (HealthStatus, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	status, exists := m.components[component]
	if !exists {
		return HealthStatus{}, false
	}
	return *status, true
}

// GetAll 获取全部组件状态，按名称排序
func (m *Monitor) GetAll() []HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	all := make([]HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		all = append(all, *status)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Component < all[j].Component
	})
	return all
}
