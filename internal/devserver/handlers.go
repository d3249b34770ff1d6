package devserver

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// nodeID reads the node query parameter.
func nodeID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Query("node"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid node id: "+strconv.Quote(c.Query("node")))
	}
	return id, nil
}

func (s *Server) nodeList(c *fiber.Ctx) error {
	return c.JSON(s.gen.nodes)
}

// Latest readings for an unknown node are "no data", not an error.
func (s *Server) latestCPU(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(s.gen.latestCPU(id, s.opts.Now()))
}

func (s *Server) latestRAM(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(s.gen.latestRAM(id, s.opts.Now()))
}

func (s *Server) cpuStat(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.JSON([]cpuReading{})
	}
	return c.JSON(s.gen.cpuHistory(id, s.opts.Now()))
}

func (s *Server) ramStat(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.JSON([]struct{}{})
	}
	return c.JSON(s.gen.ramHistory(id, s.opts.Now()))
}

func (s *Server) nodeInfo(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.JSON(nil)
	}
	return c.JSON(s.gen.nodeInfo(id, s.opts.Now()))
}

func (s *Server) serviceStatus(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.JSON([]struct{}{})
	}
	return c.JSON(s.gen.services(id))
}

func (s *Server) nodeServices(c *fiber.Ctx) error {
	id, err := nodeID(c)
	if err != nil {
		return err
	}
	if !s.gen.known(id) {
		return c.JSON([]struct{}{})
	}
	return c.JSON(s.gen.nodeServices())
}
