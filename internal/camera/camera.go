// Package camera реализует перспективную камеру с азимутом и углом возвышения.
// Используется рендером для отсечения граней чанков вне поля зрения.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxElevation ограничивает наклон камеры, чтобы не перевернуться через зенит
const MaxElevation = 85.0

// Properties начальные параметры камеры. FOV задаётся в градусах.
type Properties struct {
	Eye    mgl32.Vec3
	LookAt mgl32.Vec3
	Up     mgl32.Vec3
	FOV    float32
	Aspect float32
	ZNear  float32
	ZFar   float32
}

// DefaultProperties возвращает параметры для окна 16:9 с обзором 60°
func DefaultProperties() Properties {
	return Properties{
		Eye:    mgl32.Vec3{0, 0, 0},
		LookAt: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    60,
		Aspect: 16.0 / 9.0,
		ZNear:  0.1,
		ZFar:   1000,
	}
}

// Camera хранит позицию и ориентацию; матрицы пересчитываются лениво.
// Не потокобезопасна.
type Camera struct {
	props     Properties
	position  mgl32.Vec3
	azimuth   float32 // градусы, [0, 360)
	elevation float32 // градусы, [-MaxElevation, MaxElevation]

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
	viewDirty      bool
	projDirty      bool
}

// New создаёт камеру в точке props.Eye, направленную на props.LookAt
func New(props Properties) *Camera {
	if props.Up.Len() == 0 {
		props.Up = mgl32.Vec3{0, 1, 0}
	}
	c := &Camera{props: props, viewDirty: true, projDirty: true}
	c.SetPosition(props.Eye)
	c.LookAt(props.LookAt)
	return c
}

// Position возвращает текущую позицию
func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

// Orientation возвращает азимут и угол возвышения в градусах
func (c *Camera) Orientation() (azimuth, elevation float32) {
	return c.azimuth, c.elevation
}

// SetPosition перемещает камеру в точку p
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.viewDirty = true
}

// LookAt поворачивает камеру на точку target
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.elevation = mgl32.RadToDeg(float32(math.Asin(float64(-d.Y()))))
	c.azimuth = -mgl32.RadToDeg(float32(math.Atan2(float64(-d.X()), float64(-d.Z()))))
	c.clamp()
	c.viewDirty = true
}

// OffsetOrientation поворачивает камеру на az и el градусов
func (c *Camera) OffsetOrientation(az, el float32) {
	c.azimuth += az
	c.elevation += el
	c.clamp()
	c.viewDirty = true
}

func (c *Camera) clamp() {
	c.azimuth = float32(math.Mod(float64(c.azimuth), 360))
	if c.azimuth < 0 {
		c.azimuth += 360
	}
	c.elevation = mgl32.Clamp(c.elevation, -MaxElevation, MaxElevation)
}

func (c *Camera) attitude() mgl32.Mat4 {
	el := mgl32.HomogRotate3DX(mgl32.DegToRad(c.elevation))
	az := mgl32.HomogRotate3DY(mgl32.DegToRad(c.azimuth))
	return el.Mul4(az)
}

// Forward возвращает единичный вектор взгляда
func (c *Camera) Forward() mgl32.Vec3 {
	return c.attitude().Transpose().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
}

// Right возвращает единичный вектор вправо от взгляда
func (c *Camera) Right() mgl32.Vec3 {
	return c.attitude().Transpose().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
}

// MoveForward смещает камеру вдоль взгляда
func (c *Camera) MoveForward(d float32) {
	c.SetPosition(c.position.Add(c.Forward().Mul(d)))
}

// MoveRight смещает камеру вбок
func (c *Camera) MoveRight(d float32) {
	c.SetPosition(c.position.Add(c.Right().Mul(d)))
}

// MoveUp смещает камеру вдоль мировой вертикали
func (c *Camera) MoveUp(d float32) {
	c.SetPosition(c.position.Add(c.props.Up.Normalize().Mul(d)))
}

// Resize обновляет соотношение сторон под новый размер окна
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.props.Aspect = float32(width) / float32(height)
	c.projDirty = true
}

// View возвращает матрицу вида
func (c *Camera) View() mgl32.Mat4 {
	if c.viewDirty {
		c.view = c.attitude().Mul4(mgl32.Translate3D(-c.position.X(), -c.position.Y(), -c.position.Z()))
	}
	return c.view
}

// Projection возвращает матрицу перспективной проекции
func (c *Camera) Projection() mgl32.Mat4 {
	if c.projDirty {
		p := c.props
		c.projection = mgl32.Perspective(mgl32.DegToRad(p.FOV), p.Aspect, p.ZNear, p.ZFar)
	}
	return c.projection
}

// ViewProjection возвращает произведение проекции и вида
func (c *Camera) ViewProjection() mgl32.Mat4 {
	if c.viewDirty || c.projDirty {
		c.viewProjection = c.Projection().Mul4(c.View())
		c.viewDirty, c.projDirty = false, false
	}
	return c.viewProjection
}

// Project переводит точку мира в однородные координаты отсечения
func (c *Camera) Project(p mgl32.Vec3) mgl32.Vec4 {
	return c.ViewProjection().Mul4x1(p.Vec4(1))
}

// IsPointVisible сообщает, попадает ли точка мира в пирамиду видимости
func (c *Camera) IsPointVisible(x, y, z float32) bool {
	clip := c.Project(mgl32.Vec3{x, y, z})
	w := clip.W()
	if w <= 0 {
		return false
	}
	return abs(clip.X()) <= w && abs(clip.Y()) <= w && abs(clip.Z()) <= w
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
