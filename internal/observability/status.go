package observability

import (
	"sync"
	"time"
)

type Role string

const (
	RoleIdle      Role = "IDLE"
	RoleSolving   Role = "SOLVING"
	RoleRendering Role = "RENDERING"
)

type SystemStatus struct {
	mu            sync.RWMutex
	CurrentRole   Role
	ActiveTask    string
	InFlight      int
	Solved        int
	Failed        int
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	CurrentRole:   RoleIdle,
	LastHeartbeat: time.Now(),
}

// SetStatus updates the global system status.
func SetStatus(role Role, task string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.CurrentRole = role
	globalStatus.ActiveTask = task
}

// Begin marks a request as in flight.
func Begin(task string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.InFlight++
	globalStatus.CurrentRole = RoleSolving
	globalStatus.ActiveTask = task
}

// End marks a request as finished. The role drops back to idle once no
// request is in flight.
func End(ok bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	if globalStatus.InFlight > 0 {
		globalStatus.InFlight--
	}
	if ok {
		globalStatus.Solved++
	} else {
		globalStatus.Failed++
	}
	if globalStatus.InFlight == 0 {
		globalStatus.CurrentRole = RoleIdle
		globalStatus.ActiveTask = ""
	}
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (Role, string, time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.CurrentRole, globalStatus.ActiveTask, globalStatus.LastHeartbeat
}

// Counters returns the in-flight, solved and failed request counts.
func Counters() (inFlight, solved, failed int) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.InFlight, globalStatus.Solved, globalStatus.Failed
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
