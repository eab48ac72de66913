package kbdinput

import "testing"

func TestQueuePushPopOrder(t *testing.T) {
	q := NewQueue(4)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []uint32{1, 2, 3} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
}

func TestQueuePopEmptyReturnsZeroFalse(t *testing.T) {
	q := NewQueue(4)
	got, ok := q.Pop()
	if ok || got != 0 {
		t.Errorf("Pop() on empty = (%d, %v), want (0, false)", got, ok)
	}
}

func TestQueueFullDropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Push(1)
	q.Push(2)
	q.Push(3) // drops 1

	first, _ := q.Pop()
	second, _ := q.Pop()
	if first != 2 || second != 3 {
		t.Errorf("got (%d, %d), want (2, 3)", first, second)
	}
}

func TestQueueSourceAdaptsPair(t *testing.T) {
	sc := NewQueue(4)
	ascii := NewQueue(4)
	sc.Push(0x1c)
	ascii.Push('a')

	src := &QueueSource{Scancodes: sc, ASCII: ascii}
	gotSC, ok := src.PollScancode()
	if !ok || gotSC != 0x1c {
		t.Errorf("PollScancode() = (%x, %v), want (1c, true)", gotSC, ok)
	}
	gotA, ok := src.PollASCII()
	if !ok || gotA != 'a' {
		t.Errorf("PollASCII() = (%c, %v), want (a, true)", gotA, ok)
	}
}
