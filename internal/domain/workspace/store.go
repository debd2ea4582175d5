package workspace

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/shared/utils"
)

// Store owns the script and stylesheet of every topic and the active topic.
// Update and SetActive are the only ways to change it.
type Store struct {
	mu        sync.RWMutex
	files     map[topic.Topic]Files
	active    topic.Topic
	observers []subscription
	nextSub   int

	prefs  *Preferences
	logger *logging.Logger
}

type subscription struct {
	id int
	fn Observer
}

// New seeds a store from reg. When prefs is not nil the remembered active
// topic is restored and every switch is written back.
func New(reg *templates.Registry, prefs *Preferences, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Store{
		files:  make(map[topic.Topic]Files, len(topic.All())),
		active: topic.Default,
		prefs:  prefs,
		logger: logger.Named("workspace"),
	}
	for _, t := range reg.Topics() {
		tpl, _ := reg.Get(t)
		s.files[t] = Files{Script: tpl.Script, Stylesheet: tpl.Stylesheet}
	}

	if prefs != nil {
		if t, ok := prefs.ActiveTopic(context.Background()); ok {
			if _, seeded := s.files[t]; seeded {
				s.active = t
			}
		}
	}
	return s
}

// Update replaces the kind text of topic t and notifies observers
func (s *Store) Update(t topic.Topic, kind FileKind, text string) error {
	if kind != Script && kind != Stylesheet {
		return fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if err := utils.ValidateSource(text, string(kind)); err != nil {
		return err
	}

	s.mu.Lock()
	files, ok := s.files[t]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownTopic, t)
	}
	if kind == Script {
		files.Script = text
	} else {
		files.Stylesheet = text
	}
	s.files[t] = files
	change := Change{Kind: ChangeEdit, Topic: t, File: kind, Active: s.active}
	observers := s.snapshotObservers()
	s.mu.Unlock()

	s.notify(observers, change)
	return nil
}

// SetActive switches the active topic and notifies observers, even when t
// is already active
func (s *Store) SetActive(t topic.Topic) error {
	s.mu.Lock()
	if _, ok := s.files[t]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownTopic, t)
	}
	s.active = t
	observers := s.snapshotObservers()
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SetActiveTopic(context.Background(), t); err != nil {
			s.logger.Warn("failed to remember active topic", zap.String("topic", t.String()), zap.Error(err))
		}
	}

	s.notify(observers, Change{Kind: ChangeSelect, Topic: t, Active: t})
	return nil
}

// Active returns the active topic
func (s *Store) Active() topic.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Get returns the files of t
func (s *Store) Get(t topic.Topic) (Files, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, ok := s.files[t]
	if !ok {
		return Files{}, fmt.Errorf("%w %q", ErrUnknownTopic, t)
	}
	return files, nil
}

// ActiveFiles returns the active topic with its files in one read
func (s *Store) ActiveFiles() (topic.Topic, Files) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.files[s.active]
}

// Subscribe registers fn and returns a function that removes it. Observers
// run on the caller's goroutine in subscription order.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// snapshotObservers copies the observer list; callers hold s.mu
func (s *Store) snapshotObservers() []Observer {
	out := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		out[i] = sub.fn
	}
	return out
}

func (s *Store) notify(observers []Observer, change Change) {
	for _, fn := range observers {
		fn(change)
	}
}
