package config

import "fmt"

// DefaultBindings returns the keymap installed when the configuration
// defines no bindings.
//
// Mod4 acts on windows, Mod4-Shift on workspaces, Mod4-Control moves the
// focused window between workspaces and Mod4-Mod1 acts on monitors and the
// window manager itself.
func DefaultBindings() []Binding {
	b := []Binding{
		{Keys: "Mod4-j", Action: "window.roll_left"},
		{Keys: "Mod4-k", Action: "window.roll_right"},
		{Keys: "Mod4-q", Action: "window.close"},
		{Keys: "Mod4-Control-n", Action: "window.move", Args: []string{"0"}},

		{Keys: "Mod4-Shift-n", Action: "workspace.push"},
		{Keys: "Mod4-Shift-q", Action: "workspace.pop"},
		{Keys: "Mod4-Shift-f", Action: "workspace.fullscreen"},
		{Keys: "Mod4-Shift-h", Action: "workspace.shrink"},
		{Keys: "Mod4-Shift-l", Action: "workspace.grow"},
		{Keys: "Mod4-Shift-j", Action: "workspace.roll_left"},
		{Keys: "Mod4-Shift-k", Action: "workspace.roll_right"},

		{Keys: "Mod4-Mod1-j", Action: "monitor.roll_left"},
		{Keys: "Mod4-Mod1-k", Action: "monitor.roll_right"},
		{Keys: "Mod4-Mod1-r", Action: "wm.refresh"},
		{Keys: "Mod4-Mod1-l", Action: "wm.logout"},
		{Keys: "Mod4-Mod1-s", Action: "launch", Args: []string{"systemctl", "suspend"}},

		{Keys: "Mod4-f", Action: "launch", Args: []string{"firefox"}},
		{Keys: "Mod4-t", Action: "launch", Args: []string{"xterm"}},

		{Keys: "XF86AudioLowerVolume", Action: "launch", Args: []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"}},
		{Keys: "XF86AudioRaiseVolume", Action: "launch", Args: []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"}},
		{Keys: "XF86AudioMute", Action: "launch", Args: []string{"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"}},
	}

	for n := 1; n <= 9; n++ {
		arg := []string{fmt.Sprint(n)}
		b = append(b,
			Binding{Keys: fmt.Sprintf("Mod4-%d", n), Action: "window.swap", Args: arg},
			Binding{Keys: fmt.Sprintf("Mod4-Control-%d", n), Action: "window.move", Args: arg},
			Binding{Keys: fmt.Sprintf("Mod4-Shift-%d", n), Action: "workspace.swap", Args: arg},
			Binding{Keys: fmt.Sprintf("Mod4-Mod1-%d", n), Action: "monitor.swap", Args: arg},
		)
	}
	return b
}
