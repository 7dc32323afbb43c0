package memory

import "fmt"

// Frame represents one unit of physical memory.
// Page, PID and LoadTime are -1 while the frame is free.
type Frame struct {
	ID       int   // Fixed at construction, 0..NumFrames-1
	Occupied bool  // Whether a page is resident
	Page     int   // Resident page number
	PID      int   // Owner of the resident page
	LoadTime int64 // Manager clock when the page was loaded
}

func freeFrame(id int) Frame {
	return Frame{ID: id, Page: -1, PID: -1, LoadTime: -1}
}

func (f Frame) String() string {
	if !f.Occupied {
		return fmt.Sprintf("Frame: (ID: %d, free)", f.ID)
	}
	return fmt.Sprintf("Frame: (ID: %d, PID: %d, Page: %d, LoadTime: %d)", f.ID, f.PID, f.Page, f.LoadTime)
}

// PageTableEntry maps one page of a process to a frame.
// Entries whose page was evicted stay in the table with Valid=false.
type PageTableEntry struct {
	Page  int
	Frame int
	Valid bool
}

// pageKey addresses a page table entry; page tables form a flat map keyed by (PID, page).
type pageKey struct {
	pid  int
	page int
}
