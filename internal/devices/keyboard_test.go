package devices

import (
	"testing"

	"github.com/rv64sim/rv64sim/internal/kbdinput"
)

func TestKeyboardReadsScancodeAndASCIILanesIndependently(t *testing.T) {
	sc := kbdinput.NewQueue(4)
	ascii := kbdinput.NewQueue(4)
	sc.Push(0x1e)
	ascii.Push('a')

	k := NewKeyboard(0xa000_0060, &kbdinput.QueueSource{Scancodes: sc, ASCII: ascii})

	scAddr := uint64(0xa000_0060)
	k.Enqueue(&scAddr, nil)
	if got := k.Tick(); got != 0x1e {
		t.Errorf("scancode lane = %#x, want 1e", got)
	}

	asciiAddr := uint64(0xa000_0064)
	k.Enqueue(&asciiAddr, nil)
	if got := k.Tick(); got != 'a' {
		t.Errorf("ascii lane = %c, want a", got)
	}
}

func TestKeyboardEmptyQueueReturnsZero(t *testing.T) {
	sc := kbdinput.NewQueue(4)
	ascii := kbdinput.NewQueue(4)
	k := NewKeyboard(0xa000_0060, &kbdinput.QueueSource{Scancodes: sc, ASCII: ascii})

	addr := uint64(0xa000_0060)
	k.Enqueue(&addr, nil)
	if got := k.Tick(); got != 0 {
		t.Errorf("Tick() on empty queue = %d, want 0", got)
	}
}
