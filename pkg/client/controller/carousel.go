package controller

import "strconv"

// Next 下一张图片，到最后一张时停住
func (c *Controller) Next(id string) {
	c.step(id, 1)
}

// Prev 上一张图片，到第一张时停住
func (c *Controller) Prev(id string) {
	c.step(id, -1)
}

func (c *Controller) step(id string, delta int) {
	car, ok := c.find(id)
	if !ok || len(car.Images) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index[id] + delta
	if i < 0 {
		i = 0
	}
	if last := len(car.Images) - 1; i > last {
		i = last
	}
	c.index[id] = i
}

// Indicator "当前/总数"，从 1 开始；没有图片时为 "0/0"
func (c *Controller) Indicator(id string) string {
	car, ok := c.find(id)
	if !ok || len(car.Images) == 0 {
		return "0/0"
	}
	c.mu.Lock()
	i := c.index[id]
	c.mu.Unlock()
	return strconv.Itoa(i+1) + "/" + strconv.Itoa(len(car.Images))
}

// CurrentImage 当前展示的图片 URL，没有图片时返回 false，由调用方渲染占位
func (c *Controller) CurrentImage(id string) (string, bool) {
	car, ok := c.find(id)
	if !ok || len(car.Images) == 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return car.Images[c.index[id]], true
}
