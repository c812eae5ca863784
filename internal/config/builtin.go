package config

// BuiltinAppWindows returns the initial window sizes of the bundled apps.
//
// Apps not listed here open at windows.default_width x default_height.
func BuiltinAppWindows() map[string]AppWindow {
	return map[string]AppWindow{
		"explorer":   {Width: 900, Height: 560},
		"calculator": {Width: 400, Height: 560},
		"about":      {Width: 500, Height: 400},
	}
}
