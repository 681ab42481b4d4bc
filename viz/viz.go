// Package viz renders a debug PNG image of an octree's node bounding
// boxes (optionally leaves only) and particle positions: a fixed look-at/perspective
// camera and line/point rasterisation, pointed at a single static
// snapshot of tree structure rather than an animation.
package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/MichaelSB/rakau/tree"
)

var (
	gray   = color.RGBA{128, 128, 128, 255}
	white  = color.RGBA{255, 255, 255, 255}
	red    = color.RGBA{255, 0, 0, 255}
	green  = color.RGBA{0, 255, 0, 255}
	blue   = color.RGBA{0, 0, 255, 255}
	yellow = color.RGBA{255, 255, 0, 255}
)

// Options controls RenderTree's camera and output.
type Options struct {
	Width, Height int
	// EyeDistance places the camera along the (1,1,1) direction at this
	// distance from the origin.
	EyeDistance float64
	// DrawLeavesOnly skips interior node wireframes, showing only leaf
	// bounding boxes (less visual clutter on deep trees).
	DrawLeavesOnly bool
}

// DefaultOptions is a fixed 1920x1080 frame with a camera far enough
// back to frame a typical simulation volume.
func DefaultOptions() Options {
	return Options{Width: 1920, Height: 1080, EyeDistance: 3}
}

// RenderTree writes a PNG at path showing every node's bounding box
// (scaled from tree.Node's Size/Com fields) and every particle as a
// point, projected through a fixed look-at/perspective camera.
func RenderTree[T tree.Float](path string, t *tree.Tree[T], opt Options) error {
	if opt.Width == 0 || opt.Height == 0 {
		opt = DefaultOptions()
	}

	boxSize := float64(t.BoxSize())
	if boxSize == 0 {
		boxSize = 1
	}
	eye := mgl64.Vec3{1, 1, 1}.Normalize().Mul(boxSize * opt.EyeDistance)
	view := mgl64.LookAtV(eye, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(60), float64(opt.Width)/float64(opt.Height), 0.01, boxSize*10)
	vp := proj.Mul4(view)

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, n := range t.Nodes() {
		if opt.DrawLeavesOnly && !n.IsLeaf() {
			continue
		}
		centre := mgl64.Vec3{float64(n.Com[0]), float64(n.Com[1]), float64(n.Com[2])}
		drawBoxWireframe(img, vp, centre, float64(n.Size)/2, boxColour(n.IsLeaf()))
	}

	for p := 0; p < t.NParts(); p++ {
		pos := mgl64.Vec3{
			float64(t.Coords(0)[p]),
			float64(t.Coords(1)[p]),
			float64(t.Coords(2)[p]),
		}
		plotPoint3D(img, white, vp, pos)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create %s: %w", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("viz: encode %s: %w", path, err)
	}
	return nil
}

func boxColour(isLeaf bool) color.Color {
	if isLeaf {
		return green
	}
	return gray
}

var cornerOrder = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// boxCorners returns the 8 vertices of the axis-aligned box centred at
// centre with the given half-size, ordered by octant bit (low bit = X,
// next = Y, next = Z).
func boxCorners(centre mgl64.Vec3, halfSize float64) [8]mgl64.Vec3 {
	var c [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		sx, sy, sz := -1.0, -1.0, -1.0
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&4 != 0 {
			sz = 1
		}
		c[i] = mgl64.Vec3{
			centre.X() + sx*halfSize,
			centre.Y() + sy*halfSize,
			centre.Z() + sz*halfSize,
		}
	}
	return c
}

func drawBoxWireframe(img draw.Image, vp mgl64.Mat4, centre mgl64.Vec3, halfSize float64, col color.Color) {
	corners := boxCorners(centre, halfSize)
	for _, e := range cornerOrder {
		plotLine3D(img, col, vp, corners[e[0]], corners[e[1]])
	}
}

func plotPoint3D(img draw.Image, col color.Color, vp mgl64.Mat4, p mgl64.Vec3) {
	t := vp.Mul4x1(p.Vec4(1))
	if t[3] <= 0 {
		return
	}
	t = t.Mul(1 / t[3])
	x, y := mgl64.GLToScreenCoords(t.X(), t.Y(), img.Bounds().Dx(), img.Bounds().Dy())
	img.Set(x, y, col)
}

func plotLine3D(img draw.Image, col color.Color, vp mgl64.Mat4, p1, p2 mgl64.Vec3) {
	t1 := vp.Mul4x1(p1.Vec4(1))
	t2 := vp.Mul4x1(p2.Vec4(1))

	if t1[3] <= 0 && t2[3] <= 0 {
		return
	}
	if t1[3] < 0 {
		lerpWTo0(&t1, &t2)
	}
	if t2[3] < 0 {
		lerpWTo0(&t2, &t1)
	}

	t1 = t1.Mul(1 / t1[3])
	t2 = t2.Mul(1 / t2[3])

	x1, y1 := mgl64.GLToScreenCoords(t1.X(), t1.Y(), img.Bounds().Dx(), img.Bounds().Dy())
	x2, y2 := mgl64.GLToScreenCoords(t2.X(), t2.Y(), img.Bounds().Dx(), img.Bounds().Dy())
	plotLine(img, col, x1, y1, x2, y2)
}

func lerpWTo0(low, high *mgl64.Vec4) {
	t := (0.1 - low[3]) / (high[3] - low[3])
	low[0] += t * (high[0] - low[0])
	low[1] += t * (high[1] - low[1])
	low[2] += t * (high[2] - low[2])
	low[3] = 0.1
}

// plotLine draws a line from (x0,y0) to (x1,y1) with Bresenham's
// algorithm.
func plotLine(img draw.Image, col color.Color, x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
