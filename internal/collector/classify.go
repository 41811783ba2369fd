package collector

import (
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// MaxLowSystemPID is the highest PID always treated as System.
const MaxLowSystemPID = 10

// UIDLookup returns the real UID of a process. ok is false when the owner
// can't be determined.
type UIDLookup func(pid int) (uid int, ok bool)

// ProcessUID reads the real UID through gopsutil.
func ProcessUID(pid int) (int, bool) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, false
	}
	uids, err := p.Uids()
	if err != nil || len(uids) == 0 {
		return 0, false
	}
	return int(uids[0]), true
}

type uidKey struct {
	pid  int
	name string
}

// Classifier marks processes System or User.
type Classifier struct {
	systemNames      []string
	interactiveNames []string
	lookup           UIDLookup

	mu   sync.Mutex
	uids map[uidKey]int
}

// NewClassifier builds a classifier. A nil lookup disables the root rule.
func NewClassifier(systemNames, interactiveNames []string, lookup UIDLookup) *Classifier {
	return &Classifier{
		systemNames:      systemNames,
		interactiveNames: interactiveNames,
		lookup:           lookup,
		uids:             make(map[uidKey]int),
	}
}

// Classify returns System when the name contains a known system process
// name, the PID is in 1..10, or the process runs as root without looking
// like a root shell the user started.
func (c *Classifier) Classify(pid int, name string) Classification {
	if containsAny(name, c.systemNames) {
		return ClassSystem
	}
	if pid > 0 && pid <= MaxLowSystemPID {
		return ClassSystem
	}
	if uid, ok := c.uid(pid, name); ok && uid == 0 {
		if containsAny(name, c.interactiveNames) {
			return ClassUser
		}
		return ClassSystem
	}
	return ClassUser
}

// uid caches lookups per (pid, name) so a recycled PID is looked up again.
func (c *Classifier) uid(pid int, name string) (int, bool) {
	if c.lookup == nil {
		return 0, false
	}

	key := uidKey{pid: pid, name: name}
	c.mu.Lock()
	uid, ok := c.uids[key]
	c.mu.Unlock()
	if ok {
		return uid, true
	}

	uid, ok = c.lookup(pid)
	if !ok {
		return 0, false
	}

	c.mu.Lock()
	c.uids[key] = uid
	c.mu.Unlock()
	return uid, true
}

// Forget drops cached UIDs for processes not in live.
func (c *Classifier) Forget(live map[int]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.uids {
		if _, ok := live[key.pid]; !ok {
			delete(c.uids, key)
		}
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
