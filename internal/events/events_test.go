// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(KindBootstrapCompleted, "ai_agent_db", map[string]int64{"products": 5})
	_, err := uuid.Parse(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, KindBootstrapCompleted, ev.Kind)
	assert.False(t, ev.At.IsZero())

	other := NewEvent(KindBootstrapCompleted, "ai_agent_db", nil)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher([]string{"localhost:9092"}, "docseed.bootstrap", nil)
	p.writer = w

	ev := NewEvent(KindSeedCompleted, "ai_agent_db", map[string]int64{"products": 5, "customers": 3, "orders": 3})
	ev.VectorIndexSkipped = true
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("ai_agent_db"), msg.Key)
	assert.Equal(t, []kafka.Header{{Key: "kind", Value: []byte(KindSeedCompleted)}}, msg.Headers)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, ev.ID, got["id"])
	assert.Equal(t, "seed.completed", got["kind"])
	assert.Equal(t, true, got["vector_index_skipped"])
	assert.Equal(t, map[string]any{"products": 5.0, "customers": 3.0, "orders": 3.0}, got["counts"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_KeyPicksPartition(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "docseed.bootstrap", nil)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	require.IsType(t, &kafka.Hash{}, w.Balancer)

	msg := kafka.Message{Key: []byte("ai_agent_db")}
	first := w.Balancer.Balance(msg, 0, 1, 2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, w.Balancer.Balance(msg, 0, 1, 2))
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := NewKafkaPublisher([]string{"localhost:9092"}, "docseed.bootstrap", nil)
	p.writer = w

	err := p.Publish(context.Background(), NewEvent(KindBootstrapCompleted, "db", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish bootstrap.completed to docseed.bootstrap")
	assert.Contains(t, err.Error(), "broker unreachable")
}

func TestNewPublisher(t *testing.T) {
	_, ok := NewPublisher(nil, "t", nil).(NopPublisher)
	assert.True(t, ok)

	kp, ok := NewPublisher([]string{"localhost:9092"}, "t", nil).(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "t", kp.topic)

	var nop NopPublisher
	assert.NoError(t, nop.Publish(context.Background(), Event{}))
	assert.NoError(t, nop.Close())
}
