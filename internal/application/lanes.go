package application

import "sync"

// laneSet runs tasks in submission order per key, with different keys
// draining concurrently.
type laneSet struct {
	mu     sync.Mutex
	queues map[string][]func()
	wg     sync.WaitGroup
}

func newLaneSet() *laneSet {
	return &laneSet{queues: make(map[string][]func())}
}

func (l *laneSet) submit(key string, task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue, draining := l.queues[key]
	l.queues[key] = append(queue, task)
	if draining {
		return
	}

	l.wg.Add(1)
	go l.drain(key)
}

func (l *laneSet) drain(key string) {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		queue := l.queues[key]
		if len(queue) == 0 {
			delete(l.queues, key)
			l.mu.Unlock()
			return
		}
		task := queue[0]
		l.queues[key] = queue[1:]
		l.mu.Unlock()

		task()
	}
}

func (l *laneSet) wait() {
	l.wg.Wait()
}
