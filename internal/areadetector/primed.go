package areadetector

import "context"

// Primed reports whether the plugin has ever received a frame.
//
// The plugin's array metadata mirrors the last frame it processed; after
// an IOC restart it reads all zeros until a frame passes through. Primed
// compares frame size, color mode and data type between the camera and
// the plugin, requiring both sizes to be non-zero.
//
// Ordinary mismatches are not errors: they are logged at debug level and
// reported as false. Only transport failures return an error.
func (p *FilePlugin) Primed(ctx context.Context) (bool, error) {
	camSize, err := p.cam.ArraySize(ctx)
	if err != nil {
		return false, err
	}
	plugSize, err := p.ArraySize(ctx)
	if err != nil {
		return false, err
	}

	if sum(camSize) == 0 || sum(plugSize) == 0 {
		p.logger.Debug("plugin not primed: zero array size",
			"plugin", p.name, "cam_size", camSize, "plugin_size", plugSize)
		return false, nil
	}
	if camSize != plugSize {
		p.logger.Debug("plugin not primed: array size mismatch",
			"plugin", p.name, "cam_size", camSize, "plugin_size", plugSize)
		return false, nil
	}

	camColor, err := p.cam.ColorMode(ctx)
	if err != nil {
		return false, err
	}
	plugColor, err := p.ColorMode(ctx)
	if err != nil {
		return false, err
	}
	if camColor != plugColor {
		p.logger.Debug("plugin not primed: color mode mismatch",
			"plugin", p.name, "cam", camColor, "plugin", plugColor)
		return false, nil
	}

	camType, err := p.cam.DataType(ctx)
	if err != nil {
		return false, err
	}
	plugType, err := p.DataType(ctx)
	if err != nil {
		return false, err
	}
	if camType != plugType {
		p.logger.Debug("plugin not primed: data type mismatch",
			"plugin", p.name, "cam", camType, "plugin", plugType)
		return false, nil
	}

	return true, nil
}

func sum(a [3]int) int {
	return a[0] + a[1] + a[2]
}
