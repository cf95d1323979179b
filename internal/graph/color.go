package graph

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spreads consecutive cluster ids around the hue wheel.
const goldenAngle = 137.50776405003785

// ClusterColor returns the hex color of a cluster. It depends on the id alone,
// so re-rendering a payload never reassigns colors.
func ClusterColor(cluster int) string {
	hue := math.Mod(float64(cluster)*goldenAngle, 360)
	if hue < 0 {
		hue += 360
	}
	return colorful.Hsl(hue, 0.62, 0.52).Hex()
}
