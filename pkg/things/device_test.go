package things

import (
	"errors"
	"testing"
)

type capturingHub struct {
	propertyChanges []string
	actionStatuses  []string
	events          []string
}

func (h *capturingHub) SendPropertyChanged(d *Device, p *Property) {
	h.propertyChanges = append(h.propertyChanges, p.Name())
}

func (h *capturingHub) SendActionStatus(d *Device, a *Action) {
	h.actionStatuses = append(h.actionStatuses, a.Status())
}

func (h *capturingHub) SendEvent(d *Device, e *Event) {
	h.events = append(h.events, e.Name())
}

func TestDeviceProperties(t *testing.T) {
	device := NewDevice("lamp-1", "Lamp")
	hub := &capturingHub{}
	device.SetHub(hub)

	on, err := device.NewProperty("on", map[string]any{"type": "boolean"})
	if err != nil {
		t.Fatalf("NewProperty failed: %v", err)
	}

	t.Run("DuplicateName", func(t *testing.T) {
		dup := NewProperty(device, "on", Description{Type: TypeBoolean})
		if err := device.AddProperty(dup); !errors.Is(err, ErrDuplicateProperty) {
			t.Errorf("expected ErrDuplicateProperty, got %v", err)
		}
	})

	t.Run("SetPropertyForwardsToHub", func(t *testing.T) {
		v, err := device.SetProperty("on", 1)
		if err != nil {
			t.Fatalf("SetProperty failed: %v", err)
		}
		if v != true {
			t.Errorf("expected coerced true, got %v", v)
		}
		if len(hub.propertyChanges) != 1 || hub.propertyChanges[0] != "on" {
			t.Errorf("expected one hub notification for on, got %v", hub.propertyChanges)
		}
	})

	t.Run("GetProperty", func(t *testing.T) {
		v, err := device.GetProperty("on")
		if err != nil {
			t.Fatalf("GetProperty failed: %v", err)
		}
		if v != true {
			t.Errorf("expected true, got %v", v)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := device.GetProperty("nope"); !errors.Is(err, ErrPropertyNotFound) {
			t.Errorf("expected ErrPropertyNotFound, got %v", err)
		}
	})

	t.Run("NotifierIsDevice", func(t *testing.T) {
		// The property created via the device notifies through it.
		before := len(hub.propertyChanges)
		_, _ = on.RequestValueChange(false)
		if len(hub.propertyChanges) != before+1 {
			t.Error("property change did not reach the hub")
		}
	})
}

func TestDeviceActions(t *testing.T) {
	device := NewDevice("lamp-1", "Lamp")
	hub := &capturingHub{}
	device.SetHub(hub)
	device.SetClock(tickClock())

	device.AddAvailableAction("fade", ActionMetadata{
		Title: "Fade",
		Input: map[string]any{"type": "object"},
	})

	t.Run("UnknownAction", func(t *testing.T) {
		if _, err := device.RequestAction("explode", nil); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("expected ErrUnknownAction, got %v", err)
		}
	})

	a, err := device.RequestAction("fade", map[string]any{"level": 50})
	if err != nil {
		t.Fatalf("RequestAction failed: %v", err)
	}

	t.Run("MintedID", func(t *testing.T) {
		if a.ID() == "" {
			t.Error("expected minted id")
		}
		got, err := device.Action(a.ID())
		if err != nil || got != a {
			t.Errorf("expected retained action, got %v (%v)", got, err)
		}
	})

	t.Run("TransitionsReachHub", func(t *testing.T) {
		a.Start()
		a.Finish()
		if len(hub.actionStatuses) != 2 {
			t.Fatalf("expected 2 hub notifications, got %d", len(hub.actionStatuses))
		}
		if hub.actionStatuses[0] != ActionPending || hub.actionStatuses[1] != ActionCompleted {
			t.Errorf("unexpected statuses: %v", hub.actionStatuses)
		}
	})

	t.Run("RemoveAction", func(t *testing.T) {
		if err := device.RemoveAction(a.ID()); err != nil {
			t.Fatalf("RemoveAction failed: %v", err)
		}
		if _, err := device.Action(a.ID()); !errors.Is(err, ErrActionNotFound) {
			t.Errorf("expected ErrActionNotFound, got %v", err)
		}
		if err := device.RemoveAction(a.ID()); !errors.Is(err, ErrActionNotFound) {
			t.Errorf("expected ErrActionNotFound on double remove, got %v", err)
		}
	})
}

func TestDeviceEvents(t *testing.T) {
	device := NewDevice("lamp-1", "Lamp")
	hub := &capturingHub{}
	device.SetHub(hub)
	device.AddAvailableEvent("overheated", EventMetadata{Type: "number"})

	e := device.EmitEvent("overheated", 104)
	if e.Name() != "overheated" {
		t.Errorf("expected overheated, got %s", e.Name())
	}
	if len(hub.events) != 1 || hub.events[0] != "overheated" {
		t.Errorf("expected event to reach hub, got %v", hub.events)
	}
	if len(device.Events()) != 1 {
		t.Errorf("expected 1 retained event, got %d", len(device.Events()))
	}
}

func TestDeviceDescribe(t *testing.T) {
	device := NewDevice("lamp-1", "Lamp")
	device.SetAtTypes([]string{"Light"})
	device.SetDescription("A lamp")

	if _, err := device.NewProperty("on", map[string]any{"type": "boolean"}); err != nil {
		t.Fatal(err)
	}
	if _, err := device.NewProperty("secret", map[string]any{"type": "string", "visible": false}); err != nil {
		t.Fatal(err)
	}
	if err := device.AddProperty(NewProperty(device, "level", Description{Type: TypeInteger})); err != nil {
		t.Fatal(err)
	}
	device.AddAvailableAction("fade", ActionMetadata{Title: "Fade"})
	device.AddAvailableEvent("overheated", EventMetadata{Type: "number"})

	desc := device.Describe()

	if desc["id"] != "lamp-1" || desc["title"] != "Lamp" || desc["description"] != "A lamp" {
		t.Errorf("unexpected identity fields: %v", desc)
	}

	properties, ok := desc["properties"].(map[string]any)
	if !ok {
		t.Fatal("expected properties map")
	}
	if _, ok := properties["on"]; !ok {
		t.Error("expected visible property in description")
	}
	if _, ok := properties["secret"]; ok {
		t.Error("non-visible property must be excluded from the description")
	}
	if _, ok := properties["level"]; !ok {
		t.Error("directly constructed property without visible must default to visible")
	}

	actions, ok := desc["actions"].(map[string]any)
	if !ok {
		t.Fatal("expected actions map")
	}
	if _, ok := actions["fade"]; !ok {
		t.Error("expected declared action in description")
	}

	events, ok := desc["events"].(map[string]any)
	if !ok {
		t.Fatal("expected events map")
	}
	if _, ok := events["overheated"]; !ok {
		t.Error("expected declared event in description")
	}
}

func TestDeviceWithoutHub(t *testing.T) {
	device := NewDevice("lamp-1", "Lamp")
	if _, err := device.NewProperty("on", map[string]any{"type": "boolean"}); err != nil {
		t.Fatal(err)
	}

	// Notifications without a hub are dropped, not a crash.
	if _, err := device.SetProperty("on", true); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	device.AddAvailableAction("reboot", ActionMetadata{})
	a, err := device.RequestAction("reboot", nil)
	if err != nil {
		t.Fatal(err)
	}
	a.Start()
	a.Finish()
}
