package logging

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Компоненты voxeld, у каждого свой логгер
const (
	ComponentWorld  = "world"
	ComponentRender = "render"
	ComponentEvents = "events"
)

// Manager раздаёт логгеры компонентов с общим уровнем.
// С toFile каждый компонент пишет в свой файл в LogDir и в out; иначе только в out.
type Manager struct {
	mu      sync.Mutex
	level   LogLevel
	toFile  bool
	out     io.Writer
	loggers map[string]*Logger
}

// NewManager создаёт менеджер для уровня level
func NewManager(level LogLevel, toFile bool, out io.Writer) *Manager {
	return &Manager{
		level:   level,
		toFile:  toFile,
		out:     out,
		loggers: make(map[string]*Logger),
	}
}

// Component возвращает логгер компонента, создавая его при первом обращении.
// Если файл создать не удалось, компонент пишет только в out.
func (m *Manager) Component(name string) *Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[name]; ok {
		return l
	}

	l, err := m.open(name)
	if err != nil {
		Warn("⚠️ логгер %s без файла: %v", name, err)
		l = NewWriterLogger(name, m.out, m.level)
	}
	l.SetLevel(m.level, m.level)
	m.loggers[name] = l
	return l
}

func (m *Manager) open(name string) (*Logger, error) {
	if !m.toFile {
		return NewWriterLogger(name, m.out, m.level), nil
	}
	l, err := NewLogger(name)
	if err != nil {
		return nil, err
	}
	l.consoleLogger.SetOutput(m.out)
	return l, nil
}

func (m *Manager) World() *Logger  { return m.Component(ComponentWorld) }
func (m *Manager) Render() *Logger { return m.Component(ComponentRender) }
func (m *Manager) Events() *Logger { return m.Component(ComponentEvents) }

// Components возвращает отсортированные имена созданных логгеров
func (m *Manager) Components() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.loggers))
	for name := range m.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close закрывает файлы всех компонентов
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger %s: %w", name, err))
		}
	}
	m.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}
