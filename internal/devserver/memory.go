// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// PageSize is the number of conversations returned by one list call.
const PageSize = 25

var errNotFound = errors.New("conversation not found")

// ============================================================================
// IN-MEMORY CONVERSATIONS
// ============================================================================

// conversation is one stored conversation.
type conversation struct {
	id        string
	title     string
	createdAt time.Time
	updatedAt time.Time
	messages  []model.ChatMessage
}

// memory holds every conversation of the single dev user.
type memory struct {
	mu    sync.RWMutex
	convs map[string]*conversation
	now   func() time.Time
}

func newMemory(now func() time.Time) *memory {
	return &memory{convs: make(map[string]*conversation), now: now}
}

// create adds a conversation titled after the question.
func (m *memory) create(title string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now().UTC()
	c := &conversation{id: uuid.NewString(), title: title, createdAt: t, updatedAt: t}
	m.convs[c.id] = c
	return c
}

// page returns conversations newest first, starting at offset.
func (m *memory) page(offset int) []conversation {
	m.mu.RLock()
	all := make([]conversation, 0, len(m.convs))
	for _, c := range m.convs {
		all = append(all, *c)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].updatedAt.Equal(all[j].updatedAt) {
			return all[i].id < all[j].id
		}
		return all[i].updatedAt.After(all[j].updatedAt)
	})
	if offset >= len(all) {
		return []conversation{}
	}
	end := offset + PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// get returns a copy of one conversation.
func (m *memory) get(id string) (conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.convs[id]
	if !ok {
		return conversation{}, errNotFound
	}
	out := *c
	out.messages = model.CloneMessages(c.messages)
	return out, nil
}

// appendMessages adds messages to a conversation.
func (m *memory) appendMessages(id string, msgs ...model.ChatMessage) error {
	return m.mutate(id, func(c *conversation) {
		c.messages = append(c.messages, msgs...)
	})
}

// replace overwrites the stored messages.
func (m *memory) replace(id string, msgs []model.ChatMessage) error {
	return m.mutate(id, func(c *conversation) {
		c.messages = model.CloneMessages(msgs)
	})
}

func (m *memory) rename(id, title string) error {
	return m.mutate(id, func(c *conversation) { c.title = title })
}

// clear removes the messages but keeps the entry.
func (m *memory) clear(id string) error {
	return m.mutate(id, func(c *conversation) { c.messages = nil })
}

func (m *memory) delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return errNotFound
	}
	delete(m.convs, id)
	return nil
}

// deleteAll removes every conversation and returns how many there were.
func (m *memory) deleteAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.convs)
	m.convs = make(map[string]*conversation)
	return n
}

func (m *memory) mutate(id string, fn func(*conversation)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok {
		return errNotFound
	}
	fn(c)
	c.updatedAt = m.now().UTC()
	return nil
}
