package circular

import (
	"errors"
	"sync"
)

/*
 * Returned when a target buffer does not match the size of the source buffer.
 */
var ErrSize = errors.New("circular: target buffer must be of the same size as source buffer")

/*
 * Data structure implementing a circular buffer of history values.
 *
 * The buffer may be written by one goroutine and read by another.
 */
type Buffer[T any] struct {
	mutex   sync.RWMutex
	values  []T
	pointer int
	count   int
}

/*
 * Add elements to the circular buffer, overwriting the oldest elements.
 *
 * Semantics: First write to buffer, then increment pointer.
 *
 * Pointer points to "oldest" element, or next element to be overwritten.
 */
func (b *Buffer[T]) Enqueue(elems ...T) {
	numElems := len(elems)
	values := b.values
	n := len(values)

	/*
	 * A buffer without capacity keeps nothing.
	 */
	if n == 0 {
		return
	}

	b.mutex.Lock()

	/*
	 * If there are more elements than fit into the buffer, simply copy
	 * the tail of the element array into the buffer, otherwise perform
	 * circular write operation.
	 */
	if numElems >= n {
		copy(values, elems[numElems-n:])
		b.pointer = 0
		b.count = n
	} else {
		ptr := b.pointer
		ptrInc := ptr + numElems

		/*
		 * Check whether the write operation stays within the array bounds.
		 */
		if ptrInc < n {
			copy(values[ptr:ptrInc], elems)
			b.pointer = ptrInc
		} else {
			tail := n - ptr
			copy(values[ptr:n], elems[:tail])
			copy(values, elems[tail:])
			b.pointer = ptrInc - n
		}

		b.count = min(b.count+numElems, n)
	}

	b.mutex.Unlock()
}

/*
 * Add a single element to the circular buffer.
 */
func (b *Buffer[T]) Push(elem T) {
	b.Enqueue(elem)
}

/*
 * Returns the capacity of the buffer.
 */
func (b *Buffer[T]) Length() int {
	return len(b.values)
}

/*
 * Returns the number of elements written so far, at most the capacity.
 */
func (b *Buffer[T]) Count() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.count
}

/*
 * Retrieve all elements from the circular buffer, oldest first.
 *
 * Slots which were never written hold the zero value.
 */
func (b *Buffer[T]) Retrieve(buf []T) error {
	values := b.values
	n := len(values)

	/*
	 * Ensure the target buffer is of equal size.
	 */
	if n != len(buf) {
		return ErrSize
	}

	b.mutex.RLock()
	ptr := b.pointer
	tailSize := n - ptr
	copy(buf[:tailSize], values[ptr:n])
	copy(buf[tailSize:n], values[:ptr])
	b.mutex.RUnlock()
	return nil
}

/*
 * Appends the written elements, oldest first, to dst[:0].
 */
func (b *Buffer[T]) Values(dst []T) []T {
	dst = dst[:0]
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	n := len(b.values)
	start := b.pointer - b.count

	/*
	 * Walk from the oldest written slot, wrapping around once.
	 */
	for i := 0; i < b.count; i++ {
		idx := (start + i + n) % n
		dst = append(dst, b.values[idx])
	}

	return dst
}

/*
 * Returns the i-th written element, counting from the oldest.
 */
func (b *Buffer[T]) At(i int) (T, bool) {
	var zero T
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	/*
	 * Only written elements are addressable.
	 */
	if i < 0 || i >= b.count {
		return zero, false
	}

	n := len(b.values)
	idx := (b.pointer - b.count + i + n) % n
	return b.values[idx], true
}

/*
 * Returns the most recently written element.
 */
func (b *Buffer[T]) Last() (T, bool) {
	return b.At(b.Count() - 1)
}

/*
 * Creates a circular buffer of a certain size.
 */
func CreateBuffer[T any](size int) *Buffer[T] {
	buf := Buffer[T]{
		values: make([]T, size),
	}

	return &buf
}
