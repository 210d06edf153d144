package geo

// Camera projects between world meters and screen pixels. Screen Y grows
// downward, world Y grows northward, so the projection flips Y.
type Camera struct {
	Center         Vec2 // world position at the screen center
	MetersPerPixel float64
	ScreenWidth    float64
	ScreenHeight   float64
}

// WorldToScreen converts a world position to screen pixels.
func (c Camera) WorldToScreen(p Vec2) Vec2 {
	mpp := c.MetersPerPixel
	if mpp <= 0 {
		mpp = 1
	}
	return Vec2{
		X: c.ScreenWidth/2 + (p.X-c.Center.X)/mpp,
		Y: c.ScreenHeight/2 - (p.Y-c.Center.Y)/mpp,
	}
}

// ScreenToWorld converts screen pixels back to a world position.
func (c Camera) ScreenToWorld(p Vec2) Vec2 {
	mpp := c.MetersPerPixel
	if mpp <= 0 {
		mpp = 1
	}
	return Vec2{
		X: c.Center.X + (p.X-c.ScreenWidth/2)*mpp,
		Y: c.Center.Y - (p.Y-c.ScreenHeight/2)*mpp,
	}
}

// ClampCenter keeps the camera center inside the sector.
func (c *Camera) ClampCenter(b SectorBounds) {
	c.Center = b.Clamp(c.Center)
}
