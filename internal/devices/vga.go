package devices

import (
	sim "github.com/rv64sim/rv64sim"
	"github.com/rv64sim/rv64sim/internal/constants"
)

// VGA is a framebuffer device plus an 8-byte control register. The high 32
// bits of the control register are an "update pending" flag the DUT sets
// to request a repaint and the device clears once it has presented the
// frame (update-and-clear semantics); the low 32 bits are unused by this
// device but preserved across reads.
type VGA struct {
	fbBase   uint64
	fbSize   uint64
	ctrlBase uint64
	width    int
	height   int
	fb       []byte
	ctrlHigh uint32
	ctrlLow  uint32
	display  Display

	pendingReadFB    *uint64
	pendingWriteFB   *sim.WriteReq
	pendingReadCtrl  *uint64
	pendingWriteCtrl *sim.WriteReq
}

// NewVGA creates a VGA device with a framebuffer of width*height*4 bytes
// (one uint32 pixel) at fbBase and a control register at ctrlBase. A nil
// display means frames are rendered into the internal buffer but never
// presented (used in tests).
func NewVGA(fbBase, ctrlBase uint64, width, height int, display Display) *VGA {
	return &VGA{
		fbBase:   fbBase,
		fbSize:   uint64(width * height * 4),
		ctrlBase: ctrlBase,
		width:    width,
		height:   height,
		fb:       make([]byte, width*height*4),
		display:  display,
	}
}

func (v *VGA) InRange(addr uint64) bool {
	return (addr >= v.fbBase && addr < v.fbBase+v.fbSize) ||
		addr == v.ctrlBase || addr == v.ctrlBase+4
}

func (v *VGA) Regions() []sim.AddrRegion {
	return []sim.AddrRegion{
		{Start: v.fbBase, End: v.fbBase + v.fbSize, Name: "vga-fb"},
		{Start: v.ctrlBase, End: v.ctrlBase + 8, Name: "vga-ctrl"},
	}
}

func (v *VGA) Enqueue(readAddr *uint64, write *sim.WriteReq) {
	if readAddr != nil {
		if *readAddr >= v.fbBase && *readAddr < v.fbBase+v.fbSize {
			v.pendingReadFB = readAddr
		} else {
			v.pendingReadCtrl = readAddr
		}
	}
	if write != nil {
		if write.WAddr >= v.fbBase && write.WAddr < v.fbBase+v.fbSize {
			v.pendingWriteFB = write
		} else {
			v.pendingWriteCtrl = write
		}
	}
}

func (v *VGA) Tick() uint64 {
	var result uint64

	if v.pendingReadFB != nil {
		result = v.readFB(*v.pendingReadFB)
	}
	if v.pendingWriteFB != nil {
		v.writeFB(v.pendingWriteFB.WAddr, v.pendingWriteFB.WData, v.pendingWriteFB.WStrb)
	}

	if v.pendingReadCtrl != nil {
		if *v.pendingReadCtrl == v.ctrlBase+4 {
			result = uint64(v.ctrlHigh)
		} else {
			result = uint64(v.ctrlLow)
		}
	}
	if v.pendingWriteCtrl != nil {
		if v.pendingWriteCtrl.WAddr == v.ctrlBase+4 {
			v.ctrlHigh = uint32(v.pendingWriteCtrl.WData)
			if v.ctrlHigh != 0 {
				v.present()
				v.ctrlHigh = 0
			}
		} else {
			v.ctrlLow = uint32(v.pendingWriteCtrl.WData)
		}
	}

	v.pendingReadFB, v.pendingWriteFB = nil, nil
	v.pendingReadCtrl, v.pendingWriteCtrl = nil, nil
	return result
}

func (v *VGA) writeFB(addr, data uint64, strb uint8) {
	off := addr - v.fbBase
	aligned := off &^ 7
	if aligned+8 > uint64(len(v.fb)) {
		return
	}
	for i := 0; i < 8; i++ {
		if strb&(1<<uint(i)) != 0 {
			v.fb[aligned+uint64(i)] = byte(data >> (8 * i))
		}
	}
}

func (v *VGA) readFB(addr uint64) uint64 {
	off := addr - v.fbBase
	aligned := off &^ 7
	if aligned+8 > uint64(len(v.fb)) {
		return 0
	}
	var val uint64
	for i := 0; i < 8; i++ {
		val |= uint64(v.fb[aligned+uint64(i)]) << (8 * i)
	}
	return val
}

// present scales the framebuffer up by constants.VGAWindowScale into a
// scratch buffer and hands it to the display collaborator.
func (v *VGA) present() {
	if v.display == nil {
		return
	}
	scale := constants.VGAWindowScale
	srcW, srcH := v.width, v.height
	dstW, dstH := srcW*scale, srcH*scale
	out := getFramebuf(dstW * dstH * 4)
	defer putFramebuf(out)

	for y := 0; y < dstH; y++ {
		srcY := y / scale
		for x := 0; x < dstW; x++ {
			srcX := x / scale
			srcOff := (srcY*srcW + srcX) * 4
			dstOff := (y*dstW + x) * 4
			if srcOff+4 <= len(v.fb) && dstOff+4 <= len(out) {
				copy(out[dstOff:dstOff+4], v.fb[srcOff:srcOff+4])
			}
		}
	}
	v.display.Present(out, dstW, dstH)
}

var _ sim.Device = (*VGA)(nil)
