package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "компонента %d: want %v, got %v", i, want, got)
	}
}

func TestPointVisibility(t *testing.T) {
	c := New(DefaultProperties())

	assert.True(t, c.IsPointVisible(0, 0, -10), "точка прямо перед камерой")
	assert.False(t, c.IsPointVisible(0, 0, 10), "точка за спиной")
	assert.False(t, c.IsPointVisible(0, 0, -2000), "дальше ZFar")
	assert.False(t, c.IsPointVisible(100, 0, -1), "вне угла обзора")
}

func TestLookAtTurnsCamera(t *testing.T) {
	p := DefaultProperties()
	p.Eye = mgl32.Vec3{5, 0, 5}
	p.LookAt = mgl32.Vec3{15, 0, 5}
	c := New(p)

	az, el := c.Orientation()
	assert.InDelta(t, 90, az, eps)
	assert.InDelta(t, 0, el, eps)
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Forward())
	assertVec(t, mgl32.Vec3{0, 0, 1}, c.Right())

	assert.True(t, c.IsPointVisible(20, 0, 5))
	assert.False(t, c.IsPointVisible(-20, 0, 5))
}

func TestOffsetOrientationClamps(t *testing.T) {
	c := New(DefaultProperties())

	c.OffsetOrientation(-30, 200)
	az, el := c.Orientation()
	assert.InDelta(t, 330, az, eps)
	assert.InDelta(t, MaxElevation, el, eps)

	c.OffsetOrientation(400, -500)
	az, el = c.Orientation()
	assert.InDelta(t, 10, az, eps)
	assert.InDelta(t, -MaxElevation, el, eps)
}

func TestMovement(t *testing.T) {
	c := New(DefaultProperties())

	c.MoveForward(3)
	assertVec(t, mgl32.Vec3{0, 0, -3}, c.Position())
	c.MoveRight(2)
	assertVec(t, mgl32.Vec3{2, 0, -3}, c.Position())
	c.MoveUp(1)
	assertVec(t, mgl32.Vec3{2, 1, -3}, c.Position())

	// матрица вида следует за позицией
	assert.True(t, c.IsPointVisible(2, 1, -10))
	assert.False(t, c.IsPointVisible(2, 1, 0))
}

func TestProjectOriginAhead(t *testing.T) {
	c := New(DefaultProperties())
	clip := c.Project(mgl32.Vec3{0, 0, -10})
	assert.InDelta(t, 0, clip.X(), eps)
	assert.InDelta(t, 0, clip.Y(), eps)
	assert.Greater(t, clip.W(), float32(0))
}

func TestResizeChangesAspect(t *testing.T) {
	c := New(DefaultProperties())
	// точка у правого края широкого экрана
	assert.True(t, c.IsPointVisible(9, 0, -10))

	c.Resize(100, 400)
	assert.False(t, c.IsPointVisible(9, 0, -10))

	c.Resize(0, 10)
	assert.False(t, c.IsPointVisible(9, 0, -10), "некорректный размер игнорируется")
}
