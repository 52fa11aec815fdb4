package dbus

import "testing"

func TestIsValidObjectPath(t *testing.T) {
	tt := map[string]bool{
		"/":                        true,
		"/org":                     true,
		"/org/freedesktop/DBus":    true,
		"/org/freedesktop/systemd1/unit/dbus_2eservice": true,
		"":                         false,
		"org/freedesktop/DBus":     false,
		"/org/freedesktop/":        false,
		"/org//freedesktop":        false,
		"/org/free desktop":        false,
		"/org/free-desktop":        false,
	}

	for path, want := range tt {
		path := path
		want := want
		t.Run(path, func(t *testing.T) {
			if got := IsValidObjectPath(path); got != want {
				t.Errorf("IsValidObjectPath(%q) = %v, want %v", path, got, want)
			}
		})
	}
}

func TestObjectPath_IsValid(t *testing.T) {
	if !ObjectPath("/a/b").IsValid() {
		t.Error("ObjectPath(\"/a/b\").IsValid() = false, want true")
	}
	if ObjectPath("a/b").IsValid() {
		t.Error("ObjectPath(\"a/b\").IsValid() = true, want false")
	}
}
