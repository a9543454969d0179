// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/gatewarden/gatewarden/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBus_PublishDispatchesByKind(t *testing.T) {
	bus := events.NewBus()

	var loginSeen, authSeen int
	bus.Subscribe(events.KindLoginAttempt, func(events.Event) { loginSeen++ })
	bus.Subscribe(events.KindAuthentication, func(events.Event) { authSeen++ })

	bus.Publish(events.NewLoginAttempt("steve", "203.0.113.7", events.MethodPassword))
	bus.Publish(events.NewAuthentication("steve", "203.0.113.7"))
	bus.Publish(events.NewAuthentication("steve", "203.0.113.7"))

	assert.Equal(t, 1, loginSeen)
	assert.Equal(t, 2, authSeen)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := events.NewBus()
	assert.True(t, bus.Publish(events.NewRegistrationCompleted("steve", "203.0.113.7")))
}

func TestBus_Veto(t *testing.T) {
	bus := events.NewBus()
	bus.Subscribe(events.KindLoginAttempt, func(e events.Event) {
		if v, ok := e.(events.Vetoable); ok {
			v.Veto()
		}
	})

	allowed := bus.Publish(events.NewLoginAttempt("steve", "203.0.113.7", events.MethodIP))
	assert.False(t, allowed, "vetoed event must not survive")
}

func TestBus_VetoOnlyAffectsVetoedEvent(t *testing.T) {
	bus := events.NewBus()

	vetoNext := true
	bus.Subscribe(events.KindLoginAttempt, func(e events.Event) {
		if vetoNext {
			e.(events.Vetoable).Veto()
		}
	})

	assert.False(t, bus.Publish(events.NewLoginAttempt("steve", "203.0.113.7", events.MethodPassword)))
	vetoNext = false
	assert.True(t, bus.Publish(events.NewLoginAttempt("steve", "203.0.113.7", events.MethodPassword)))
}

func TestBus_AllSubscribersObserveEvent(t *testing.T) {
	bus := events.NewBus()

	var order []string
	bus.Subscribe(events.KindLoginAttempt, func(events.Event) { order = append(order, "first") })
	bus.Subscribe(events.KindLoginAttempt, func(e events.Event) {
		order = append(order, "second")
		e.(events.Vetoable).Veto()
	})
	bus.Subscribe(events.KindLoginAttempt, func(events.Event) { order = append(order, "third") })

	allowed := bus.Publish(events.NewLoginAttempt("steve", "203.0.113.7", events.MethodUUID))
	assert.False(t, allowed)
	assert.Equal(t, []string{"first", "second", "third"}, order,
		"a veto must not stop delivery to later subscribers")
}
