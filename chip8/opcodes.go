package chip8

func (c *Chip8) execOpcode(op uint16) error {
	h := op & 0xF000
	nnn := op & 0x0FFF
	nn := uint8(nnn & 0xff)
	x := uint8((nnn >> 8) & 0xf)
	y := uint8((nnn >> 4) & 0xf)
	n := nn & 0x0f

	switch h {
	case 0x0000:
		switch op {
		case 0x00E0: // clear display
			for i := range c.disp {
				c.disp[i] = PixelOff
			}

		case 0x00EE: // return from subroutine
			r, err := c.popStack()
			if err != nil {
				return err
			}
			c.pc = r

		default:
			// 0NNN machine code routines are not supported
		}

	case 0x1000: // goto NNN
		c.pc = nnn

	case 0x2000: // call NNN
		if err := c.pushStack(c.pc); err != nil {
			return err
		}
		c.pc = nnn

	case 0x3000: // 3XNN if(Vx==NN)
		if c.v[x] == nn {
			c.pc += 2
		}

	case 0x4000: // 4XNN if(Vx!=NN)
		if c.v[x] != nn {
			c.pc += 2
		}

	case 0x5000: // 5XY0 if(Vx==Vy)
		if c.v[x] == c.v[y] {
			c.pc += 2
		}

	case 0x6000: // 6XNN Vx = NN
		c.v[x] = nn

	case 0x7000: // 7XNN Vx += NN (carry flag is not changed)
		c.v[x] += nn

	case 0x8000:
		c.execALU(x, y, n)

	case 0x9000: // 9XY0 if(Vx!=Vy)
		if c.v[x] != c.v[y] {
			c.pc += 2
		}

	case 0xA000: // ANNN I = NNN
		c.i = nnn

	case 0xB000: // BNNN PC=V0+NNN
		c.pc = uint16(c.v[0]) + nnn

	case 0xC000: // CXNN Vx=rand()&NN
		c.v[x] = uint8(c.rand.Intn(256)) & nn

	case 0xD000: // DXYN draw(Vx,Vy,N)
		flipped, err := c.draw(c.v[x], c.v[y], n)
		if err != nil {
			return err
		}
		c.updateCarryFlag(flipped)

	case 0xE000:
		key := c.v[x] & 0x0f
		switch nn {
		case 0x9E: // EX9E if(key()==Vx)
			if c.keys[key] {
				c.pc += 2
			}

		case 0xA1: // EXA1 if(key()!=Vx)
			if !c.keys[key] {
				c.pc += 2
			}
		}

	case 0xF000:
		return c.execMisc(x, nn)
	}

	return nil
}

// execALU handles the 8XYN family. The flag is written after the result so
// that it survives when X is F.
func (c *Chip8) execALU(x, y, n uint8) {
	switch n {
	case 0x0: // 8XY0 Vx=Vy
		c.v[x] = c.v[y]

	case 0x1: // 8XY1 Vx=Vx|Vy
		c.v[x] |= c.v[y]

	case 0x2: // 8XY2 Vx=Vx&Vy
		c.v[x] &= c.v[y]

	case 0x3: // 8XY3 Vx=Vx^Vy
		c.v[x] ^= c.v[y]

	case 0x4: // 8XY4 Vx += Vy
		carried := uint16(c.v[x])+uint16(c.v[y]) > 0xff
		c.v[x] += c.v[y]
		c.updateCarryFlag(carried)

	case 0x5: // 8XY5 Vx -= Vy
		noBorrow := c.v[x] >= c.v[y]
		c.v[x] -= c.v[y]
		c.updateCarryFlag(noBorrow)

	case 0x6: // 8XY6 Vx>>=1
		shifted := c.v[x]&0x01 == 1
		c.v[x] >>= 1
		c.updateCarryFlag(shifted)

	case 0x7: // 8XY7 Vx=Vy-Vx
		noBorrow := c.v[y] >= c.v[x]
		c.v[x] = c.v[y] - c.v[x]
		c.updateCarryFlag(noBorrow)

	case 0xE: // 8XYE Vx<<=1
		shifted := c.v[x]>>7 == 1
		c.v[x] <<= 1
		c.updateCarryFlag(shifted)
	}
}

// execMisc handles the FXNN family.
func (c *Chip8) execMisc(x, nn uint8) error {
	switch nn {
	case 0x07: // FX07 Vx = get_delay()
		c.v[x] = c.dt

	case 0x0A: // FX0A Vx = get_key()
		if k, ok := c.pressedAnyKey(); ok {
			c.v[x] = k
		} else {
			// re-execute until a key is down
			c.pc -= 2
		}

	case 0x15: // FX15 delay_timer(Vx)
		c.dt = c.v[x]

	case 0x18: // FX18 sound_timer(Vx)
		c.st = c.v[x]

	case 0x1E: // FX1E I += Vx
		c.i += uint16(c.v[x])

	case 0x29: // FX29 I = sprite_addr[Vx]
		c.i = FontOffset + uint16(c.v[x]&0x0f)*FontGlyphSize

	case 0x33: // FX33 set_BCD(Vx)
		if err := c.checkRange(3); err != nil {
			return err
		}
		c.mem[c.i+0] = c.v[x] / 100
		c.mem[c.i+1] = (c.v[x] % 100) / 10
		c.mem[c.i+2] = c.v[x] % 10

	case 0x55: // FX55 reg_dump(Vx,&I)
		if err := c.checkRange(int(x) + 1); err != nil {
			return err
		}
		copy(c.mem[c.i:], c.v[:x+1])

	case 0x65: // FX65 reg_load(Vx,&I)
		if err := c.checkRange(int(x) + 1); err != nil {
			return err
		}
		copy(c.v[:x+1], c.mem[c.i:])
	}

	return nil
}
