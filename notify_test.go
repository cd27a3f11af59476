package mediaremote

import "testing"

func TestRegisterIdempotent(t *testing.T) {
	fw := newFakeFramework()
	n := newTestRemote(fw).Notifications()

	n.Register()
	n.Register()
	assertEqual(t, fw.registerCalls, 1, "register calls")

	n.Unregister()
	n.Unregister()
	assertEqual(t, fw.unregisterCalls, 1, "unregister calls")

	// A fresh unregistered relay tolerates Unregister too.
	fw2 := newFakeFramework()
	newTestRemote(fw2).Notifications().Unregister()
	assertEqual(t, fw2.unregisterCalls, 0, "unregister calls without register")
}

func TestObserverDelivery(t *testing.T) {
	fw := newFakeFramework()
	n := newTestRemote(fw).Notifications()
	n.Register()

	var infoFired, stateFired int
	n.AddObserver(NotificationInfoDidChange, func() { infoFired++ })
	n.AddObserver(NotificationApplicationIsPlayingDidChange, func() { stateFired++ })

	fw.post(NotificationInfoDidChange)
	fw.post(NotificationInfoDidChange)
	fw.post(NotificationApplicationIsPlayingDidChange)

	assertEqual(t, infoFired, 2, "info observer invocations")
	assertEqual(t, stateFired, 1, "state observer invocations")
}

// TestObserverBeforeRegister documents the ordering contract: an observer
// added before Register simply receives nothing, it does not fail.
func TestObserverBeforeRegister(t *testing.T) {
	fw := newFakeFramework()
	n := newTestRemote(fw).Notifications()

	fired := 0
	n.AddObserver(NotificationInfoDidChange, func() { fired++ })
	fw.post(NotificationInfoDidChange)
	assertEqual(t, fired, 0, "deliveries before register")

	n.Register()
	fw.post(NotificationInfoDidChange)
	assertEqual(t, fired, 1, "deliveries after register")
}

// TestRemoveObserverIdempotent removes a token twice; the second removal
// must be a silent no-op, as must removing a token that never existed.
func TestRemoveObserverIdempotent(t *testing.T) {
	fw := newFakeFramework()
	n := newTestRemote(fw).Notifications()
	n.Register()

	fired := 0
	token := n.AddObserver(NotificationInfoDidChange, func() { fired++ })

	n.RemoveObserver(token)
	n.RemoveObserver(token)
	n.RemoveObserver(ObserverToken("never-issued"))

	fw.post(NotificationInfoDidChange)
	assertEqual(t, fired, 0, "deliveries after removal")
}

// TestUnregisterWithObserversRemaining checks Unregister is safe while
// observers are still attached.
func TestUnregisterWithObserversRemaining(t *testing.T) {
	fw := newFakeFramework()
	n := newTestRemote(fw).Notifications()
	n.Register()

	fired := 0
	n.AddObserver(NotificationInfoDidChange, func() { fired++ })
	n.Unregister()

	fw.post(NotificationInfoDidChange)
	assertEqual(t, fired, 0, "deliveries after unregister")
}
