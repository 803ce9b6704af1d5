package content

// Edit operations for the list-valued nodes of the form tree. Items can be
// appended or removed at any index; nothing is ever reordered. Remove
// returns false and leaves the list untouched when i is out of range.

func removeAt[S ~[]E, E any](s S, i int) (S, bool) {
	if i < 0 || i >= len(s) {
		return s, false
	}
	return append(s[:i:i], s[i+1:]...), true
}

func (c *BlogContent) AddParagraph() { c.Description = append(c.Description, Paragraph{}) }

func (c *BlogContent) RemoveParagraph(i int) bool {
	var ok bool
	c.Description, ok = removeAt(c.Description, i)
	return ok
}

func (l *TagList) Add() { l.List = append(l.List, Tag{}) }

func (l *TagList) Remove(i int) bool {
	var ok bool
	l.List, ok = removeAt(l.List, i)
	return ok
}

func (l *LinkList) Add() { l.List = append(l.List, Link{}) }

func (l *LinkList) Remove(i int) bool {
	var ok bool
	l.List, ok = removeAt(l.List, i)
	return ok
}

func (c *DraftContent) AddImage() { c.ImageGallery = append(c.ImageGallery, ImageItem{}) }

func (c *DraftContent) RemoveImage(i int) bool {
	var ok bool
	c.ImageGallery, ok = removeAt(c.ImageGallery, i)
	return ok
}

func (c *DraftContent) AddVideo() { c.VideoGallery = append(c.VideoGallery, VideoItem{}) }

func (c *DraftContent) RemoveVideo(i int) bool {
	var ok bool
	c.VideoGallery, ok = removeAt(c.VideoGallery, i)
	return ok
}

// AddTab appends an image tab holding one empty item.
func (c *DraftContent) AddTab() { c.ImageVideoTabsGallery = append(c.ImageVideoTabsGallery, newTab()) }

func (c *DraftContent) RemoveTab(i int) bool {
	var ok bool
	c.ImageVideoTabsGallery, ok = removeAt(c.ImageVideoTabsGallery, i)
	return ok
}

// Tab returns a pointer to tab i for in-place edits, or nil.
func (c *DraftContent) Tab(i int) *GalleryTab {
	if i < 0 || i >= len(c.ImageVideoTabsGallery) {
		return nil
	}
	return &c.ImageVideoTabsGallery[i]
}

// AddItem appends an empty item of the tab's kind.
func (t *GalleryTab) AddItem() {
	if t.Kind == VideoMedia {
		t.Videos = append(t.Videos, VideoItem{})
		return
	}
	t.Images = append(t.Images, ImageItem{})
}

func (t *GalleryTab) RemoveItem(i int) bool {
	var ok bool
	if t.Kind == VideoMedia {
		t.Videos, ok = removeAt(t.Videos, i)
	} else {
		t.Images, ok = removeAt(t.Images, i)
	}
	return ok
}

// Len returns the number of items in the tab's active list.
func (t GalleryTab) Len() int {
	if t.Kind == VideoMedia {
		return len(t.Videos)
	}
	return len(t.Images)
}

// SetKind switches the tab between image and video items. The list is
// replaced by one empty item of the new kind.
func (t *GalleryTab) SetKind(k MediaKind) {
	if t.Kind == k {
		return
	}
	t.Kind = k
	t.Images, t.Videos = nil, nil
	if k == VideoMedia {
		t.Videos = []VideoItem{{}}
	} else {
		t.Images = []ImageItem{{}}
	}
}
